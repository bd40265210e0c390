package websocket

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/live627/elkarte.net/internal/request"
)

const textMessage = websocket.TextMessage

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// MemberResolver maps a session key to its member.
type MemberResolver interface {
	ResolveMember(ctx context.Context, sessionKey string) (*request.Member, *request.SessionInfo, error)
}

func (h *Hub) ServeWS(c *gin.Context) {
	sessionKey := c.Query("session_key")
	if sessionKey == "" {
		h.logger.Warnw("WebSocket connection rejected: session_key missing",
			"client_ip", c.ClientIP(),
			"user_agent", c.GetHeader("User-Agent"),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_key is required"})
		return
	}

	member, _, err := h.resolver.ResolveMember(c.Request.Context(), sessionKey)
	if err != nil || member == nil || member.IsGuest() {
		h.logger.Warnw("WebSocket connection rejected: session not found",
			"client_ip", c.ClientIP(),
			"error", err,
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorw("Failed to upgrade connection",
			"member_id", member.ID,
			"error", err,
		)
		return
	}

	client := newClient(h, conn, member.ID)

	h.logger.Infow("WebSocket connection established",
		"client_id", client.ID,
		"member_id", client.MemberID,
		"client_ip", c.ClientIP(),
		"user_agent", c.GetHeader("User-Agent"),
	)

	if !h.Register(client) {
		conn.Close()
		return
	}
	go client.writePump()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.Unregister(client)
}
