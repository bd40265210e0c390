package request

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/live627/elkarte.net/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeResolver struct {
	members map[string]Member
}

func (f *fakeResolver) ResolveMember(_ context.Context, key string) (*Member, *SessionInfo, error) {
	m, ok := f.members[key]
	if !ok {
		return nil, nil, errors.New("session not found")
	}
	return &m, &SessionInfo{ID: 1, Key: key, Token: "tok"}, nil
}

func newEngine(t *testing.T, captured **Context) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{DefaultLanguage: "english", SessionCookie: "session_key"}
	resolver := &fakeResolver{members: map[string]Member{
		"abc": {ID: 7, Name: "alice", GroupID: 1, Language: "german"},
	}}
	r := gin.New()
	r.Use(Middleware(cfg, resolver, zap.NewNop()))
	r.GET("/index.php", func(c *gin.Context) {
		*captured = FromGin(c)
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestMiddlewareResolvesMember(t *testing.T) {
	var rc *Context
	r := newEngine(t, &rc)

	req := httptest.NewRequest(http.MethodGet, "/index.php?board=3.20&session_key=abc", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.NotNil(t, rc)
	assert.Equal(t, uint64(7), rc.Member.ID)
	assert.Equal(t, "german", rc.Language)
	assert.Equal(t, "tok", rc.Session.Token)
	assert.Equal(t, uint64(3), rc.Board)
	assert.Equal(t, "10.0.0.1", rc.IP)
}

func TestMiddlewareFallsBackToGuest(t *testing.T) {
	var rc *Context
	r := newEngine(t, &rc)

	req := httptest.NewRequest(http.MethodGet, "/index.php?session_key=unknown", nil)
	req.RemoteAddr = "192.0.2.4:5555"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.NotNil(t, rc)
	assert.True(t, rc.Member.IsGuest())
	assert.Equal(t, "english", rc.Language)
	assert.Equal(t, "192.0.2.4", rc.IP)
}

func TestRawQueryPreferredOverRewrittenQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/index.php?action=x&sesc=1", nil)
	req = req.WithContext(WithRawQuery(req.Context(), "action=x;sesc=1"))

	rc := New(httptest.NewRecorder(), req, nil)
	assert.Equal(t, "action=x;sesc=1", rc.RawQuery)
}

func TestParseBoard(t *testing.T) {
	assert.Equal(t, uint64(4), ParseBoard("4"))
	assert.Equal(t, uint64(4), ParseBoard("4.0"))
	assert.Equal(t, uint64(0), ParseBoard(""))
	assert.Equal(t, uint64(0), ParseBoard("x"))
}
