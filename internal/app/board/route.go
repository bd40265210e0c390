package board

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg gin.IRoutes, handler Handler) {
	rg.GET("/boards", handler.GetIndex)
	rg.GET("/boards/:id", handler.GetStats)
}
