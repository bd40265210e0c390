package errorlog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/live627/elkarte.net/internal/request"
)

type Handler interface {
	ListErrors(c *gin.Context)
	DeleteErrors(c *gin.Context)
	ArchiveErrors(c *gin.Context)
}

type handler struct {
	service Service
}

func NewHandler(service Service) Handler {
	return &handler{service: service}
}

// RequireAdmin rejects members who may not administrate the forum.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !request.FromGin(c).Member.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "admin access required"})
			return
		}
		c.Next()
	}
}

// @Summary List error log entries
// @Tags ErrorLog
// @Produce json
// @Param category query string false "Error category"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} ListResponse
// @Router /api/admin/errors [get]
func (h *handler) ListErrors(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.service.List(c.Request.Context(), ListOptions{
		Category: c.Query("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list errors"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Delete error log entries
// @Tags ErrorLog
// @Accept json
// @Produce json
// @Param request body DeleteRequest true "Entries to delete"
// @Router /api/admin/errors [delete]
func (h *handler) DeleteErrors(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if !req.All && len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ids or all is required"})
		return
	}

	n, err := h.service.Delete(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to delete errors"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// @Summary Archive the error log to object storage
// @Tags ErrorLog
// @Produce json
// @Param prune query bool false "Delete archived entries"
// @Success 200 {object} ArchiveResult
// @Router /api/admin/errors/archive [post]
func (h *handler) ArchiveErrors(c *gin.Context) {
	prune, _ := strconv.ParseBool(c.DefaultQuery("prune", "false"))

	result, err := h.service.Archive(c.Request.Context(), prune)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errNoStore) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
