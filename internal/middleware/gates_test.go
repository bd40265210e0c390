package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/live627/elkarte.net/internal/app/errorlog"
	"github.com/live627/elkarte.net/internal/config"
	"github.com/live627/elkarte.net/internal/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func serveWith(t *testing.T, cfg *config.Config, admin bool, gates ...gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(request.Middleware(cfg, nil, zap.NewNop()), func(c *gin.Context) {
		request.FromGin(c).Member.IsAdmin = admin
		c.Next()
	})
	r.Use(gates...)
	r.GET("/index.php", func(c *gin.Context) { c.String(http.StatusOK, "board index") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/index.php", nil))
	return w
}

func TestMaintenanceGate(t *testing.T) {
	cfg := &config.Config{Maintenance: MaintenanceClosed, MaintenanceTitle: "Closed", MaintenanceMessage: "Back <b>soon</b>"}

	w := serveWith(t, cfg, false, MaintenanceGate(cfg))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Back <b>soon</b>")
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))

	w = serveWith(t, cfg, true, MaintenanceGate(cfg))
	assert.Equal(t, http.StatusOK, w.Code)

	cfg.Maintenance = 1
	w = serveWith(t, cfg, false, MaintenanceGate(cfg))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoadAvgGate(t *testing.T) {
	cfg := &config.Config{LoadAvgForum: 4}
	high := func() (float64, error) { return 6.5, nil }
	low := func() (float64, error) { return 0.3, nil }
	broken := func() (float64, error) { return 0, errors.New("no /proc") }

	w := serveWith(t, cfg, false, LoadAvgGate(cfg, high))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "temporarily unavailable")

	assert.Equal(t, http.StatusOK, serveWith(t, cfg, false, LoadAvgGate(cfg, low)).Code)
	assert.Equal(t, http.StatusOK, serveWith(t, cfg, false, LoadAvgGate(cfg, broken)).Code)

	cfg.LoadAvgForum = 0
	assert.Equal(t, http.StatusOK, serveWith(t, cfg, false, LoadAvgGate(cfg, high)).Code)
}

func TestReadLoadAvgFromHost(t *testing.T) {
	avg, err := ReadLoadAvg()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, avg, 0.0)
}

type stubPinger struct {
	err   error
	calls int
}

func (p *stubPinger) PingDB(context.Context) error {
	p.calls++
	return p.err
}

func TestDatabaseGate(t *testing.T) {
	cfg := &config.Config{DBLastErrorFile: filepath.Join(t.TempDir(), "db_last_error")}
	page := errorlog.NewDBErrorPage(cfg, nil, nil, zap.NewNop())

	down := &stubPinger{err: errors.New("connection refused")}
	w := serveWith(t, cfg, false, DatabaseGate(down, page))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Connection Problems")

	up := &stubPinger{}
	gate := DatabaseGate(up, page)
	assert.Equal(t, http.StatusOK, serveWith(t, cfg, false, gate).Code)
	assert.Equal(t, http.StatusOK, serveWith(t, cfg, false, gate).Code)
	assert.Equal(t, 1, up.calls)
}
