package message

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler interface {
	GetMessagesByTopicID(c *gin.Context)
	GetMessageByID(c *gin.Context)
}

type handler struct {
	service Service
}

func NewHandler(service Service) Handler {
	return &handler{service: service}
}

// @Summary List messages of a topic
// @Tags Message
// @Produce json
// @Param topic_id path int true "Topic ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} MessageListResponse
// @Router /api/messages/{topic_id} [get]
func (h *handler) GetMessagesByTopicID(c *gin.Context) {
	topicID, err := strconv.ParseUint(c.Param("topic_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid topic ID"})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 50 {
		limit = 10
	}

	messages, total, err := h.service.GetMessagesByTopic(c.Request.Context(), topicID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to get messages"})
		return
	}

	c.JSON(http.StatusOK, MessageListResponse{
		Messages: messages,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// @Summary Get a message
// @Tags Message
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} MessageResponse
// @Router /api/messages/message/{id} [get]
func (h *handler) GetMessageByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid message ID"})
		return
	}

	message, err := h.service.GetMessageByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to get message"})
		return
	}
	if message == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "message not found"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: message})
}
