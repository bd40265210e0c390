package errorlog

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg *gin.RouterGroup, handler Handler) {
	errs := rg.Group("/admin/errors", RequireAdmin())
	{
		errs.GET("", handler.ListErrors)
		errs.DELETE("", handler.DeleteErrors)
		errs.POST("/archive", handler.ArchiveErrors)
	}
}
