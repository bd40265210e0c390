package message

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg *gin.RouterGroup, handler Handler) {
	messages := rg.Group("/messages")
	{
		messages.GET("/:topic_id", handler.GetMessagesByTopicID)
		messages.GET("/message/:id", handler.GetMessageByID)
	}
}
