package health

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg gin.IRoutes, h Handler) {
	rg.GET("/health", h.Check)
}
