package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/live627/elkarte.net/internal/app/member"
	"github.com/live627/elkarte.net/internal/request"
)

type Handler interface {
	CreateSession(c *gin.Context)
	GetSession(c *gin.Context)
	EndSession(c *gin.Context)
}

type handler struct {
	service    Service
	memberRepo member.Repository
}

func NewHandler(service Service, memberRepo member.Repository) Handler {
	return &handler{service: service, memberRepo: memberRepo}
}

// @Summary Start a session for a member
// @Tags Session
// @Accept json
// @Produce json
// @Param request body StartRequest true "Member to sign in"
// @Success 200 {object} SessionResponse
// @Router /api/session [post]
func (h *handler) CreateSession(c *gin.Context) {
	if !request.FromGin(c).Member.IsAdmin {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "admin access required"})
		return
	}

	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "member_name is required"})
		return
	}

	sess, m, err := h.service.StartSession(req.MemberName, c.GetHeader("User-Agent"), request.ExtractIP(c))
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to start session"})
		return
	}

	c.JSON(http.StatusOK, newResponse(sess, m))
}

// @Summary Current session
// @Tags Session
// @Produce json
// @Param session_key query string true "Session key"
// @Success 200 {object} SessionResponse
// @Router /api/session [get]
func (h *handler) GetSession(c *gin.Context) {
	rc := request.FromGin(c)
	if rc.Session.Key == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "session not found"})
		return
	}

	sess, err := h.service.GetSessionByKey(rc.Session.Key)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "session not found"})
		return
	}
	m, err := h.memberRepo.GetMemberByID(sess.MemberID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "member not found"})
		return
	}

	c.JSON(http.StatusOK, newResponse(sess, m))
}

// @Summary End the current session
// @Tags Session
// @Produce json
// @Param session_key query string true "Session key"
// @Router /api/session [delete]
func (h *handler) EndSession(c *gin.Context) {
	rc := request.FromGin(c)
	if rc.Session.ID == 0 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "session not found"})
		return
	}

	if err := h.service.UpdateSessionEndedAt(rc.Session.ID); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to end session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ended": true})
}

func newResponse(sess *Session, m *member.Member) SessionResponse {
	return SessionResponse{
		MemberID:   m.ID,
		MemberName: m.DisplayName(),
		IsAdmin:    m.IsAdmin(),
		SessionKey: sess.SessionKey,
		Token:      sess.Token,
		StartedAt:  sess.StartedAt,
	}
}
