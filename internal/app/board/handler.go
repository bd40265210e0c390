package board

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler interface {
	GetIndex(c *gin.Context)
	GetStats(c *gin.Context)
}

type handler struct {
	service Service
}

func NewHandler(service Service) Handler {
	return &handler{service: service}
}

// @Summary Board index
// @Description Categories with their boards and post/topic totals
// @Tags Board
// @Produce json
// @Success 200 {object} IndexResponse
// @Router /api/boards [get]
func (h *handler) GetIndex(c *gin.Context) {
	categories, err := h.service.Index()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load board index"})
		return
	}
	c.JSON(http.StatusOK, IndexResponse{Categories: categories})
}

// @Summary Board totals
// @Tags Board
// @Produce json
// @Param id path int true "Board ID"
// @Success 200 {object} Stats
// @Failure 404 {object} ErrorResponse
// @Router /api/boards/{id} [get]
func (h *handler) GetStats(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid board id"})
		return
	}

	stats, err := h.service.GetStats(id)
	if errors.Is(err, ErrBoardNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load board"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
