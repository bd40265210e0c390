package request

import (
	"context"
	"net"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/live627/elkarte.net/internal/config"
	"go.uber.org/zap"
)

// MemberResolver maps a session key to the member owning it.
type MemberResolver interface {
	ResolveMember(ctx context.Context, sessionKey string) (*Member, *SessionInfo, error)
}

func Middleware(cfg *config.Config, resolver MemberResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := New(c.Writer, c.Request, cfg)
		rc.IP = ExtractIP(c)
		rc.Board = ParseBoard(c.Query("board"))
		if rc.Board == 0 {
			rc.Board = ParseBoard(c.PostForm("board"))
		}

		key := c.Query("session_key")
		if key == "" {
			key, _ = c.Cookie(cfg.SessionCookie)
		}
		if key != "" && resolver != nil {
			member, sess, err := resolver.ResolveMember(c.Request.Context(), key)
			if err != nil {
				logger.Debug("Session not resolved, continuing as guest", zap.Error(err))
			} else {
				rc.Member = *member
				rc.Session = *sess
				if member.Language != "" {
					rc.Language = member.Language
				}
			}
		}

		c.Set(ginKey, rc)
		c.Next()
	}
}

// FromGin returns the request context stored by Middleware, or a guest
// context when the middleware did not run.
func FromGin(c *gin.Context) *Context {
	if v, ok := c.Get(ginKey); ok {
		if rc, ok := v.(*Context); ok {
			return rc
		}
	}
	rc := New(c.Writer, c.Request, nil)
	c.Set(ginKey, rc)
	return rc
}

func ExtractIP(c *gin.Context) string {
	clientIP := c.GetHeader("X-Forwarded-For")
	if clientIP != "" {
		ips := strings.Split(clientIP, ",")
		if len(ips) > 0 {
			netIP := net.ParseIP(strings.TrimSpace(ips[0]))
			if netIP != nil {
				return netIP.String()
			}
		}
	}

	clientIP = c.GetHeader("X-Real-IP")
	if clientIP != "" {
		netIP := net.ParseIP(clientIP)
		if netIP != nil {
			return netIP.String()
		}
	}

	ip, _, _ := net.SplitHostPort(c.Request.RemoteAddr)
	return ip
}

// ParseBoard reads a board parameter in either "3" or "3.20" form.
func ParseBoard(raw string) uint64 {
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		raw = raw[:i]
	}
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
