package session

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg gin.IRoutes, handler Handler) {
	rg.POST("/session", handler.CreateSession)
	rg.GET("/session", handler.GetSession)
	rg.DELETE("/session", handler.EndSession)
}
