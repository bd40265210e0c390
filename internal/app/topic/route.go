package topic

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg *gin.RouterGroup, handler Handler) {
	topics := rg.Group("/topics")
	{
		topics.GET("/:board_id", handler.GetTopicsByBoardID)
	}
}
