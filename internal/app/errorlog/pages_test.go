package errorlog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/live627/elkarte.net/internal/config"
	"github.com/live627/elkarte.net/internal/providers/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMailer struct {
	sent []string
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.sent = append(f.sent, to+"|"+subject)
	return nil
}

type lockedMailer struct {
	mu   sync.Mutex
	sent int
}

func (l *lockedMailer) Send(_, _, _ string) error {
	l.mu.Lock()
	l.sent++
	l.mu.Unlock()
	return nil
}

func (l *lockedMailer) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sent
}

func TestSetFatalErrorHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SetFatalErrorHeaders(w, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Mon, 26 Jul 1997 05:00:00 GMT", w.Header().Get("Expires"))
	assert.Equal(t, "Wed, 01 May 2024 10:00:00 GMT", w.Header().Get("Last-Modified"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
}

func TestDisplayMaintenanceMessage(t *testing.T) {
	cfg := &config.Config{Maintenance: 2, MaintenanceTitle: "Down <now>", MaintenanceMessage: "<p>Back soon</p>"}
	w := httptest.NewRecorder()
	DisplayMaintenanceMessage(w, cfg)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "<title>Down &lt;now&gt;</title>")
	assert.Contains(t, w.Body.String(), "<p>Back soon</p>")

	w = httptest.NewRecorder()
	DisplayMaintenanceMessage(w, &config.Config{})
	assert.Empty(t, w.Body.String())
}

func TestDisplayLoadAvgError(t *testing.T) {
	w := httptest.NewRecorder()
	DisplayLoadAvgError(w)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Temporarily Unavailable")
}

func TestDBErrorPageRateLimitsAlerts(t *testing.T) {
	cfg := &config.Config{
		DBDriver:        config.DriverPostgres,
		ForumName:       "Forum",
		WebmasterEmail:  "admin@example.com",
		DBErrorSend:     true,
		DBLastErrorFile: filepath.Join(t.TempDir(), "db_last_error"),
	}
	cache := redis.NewMemoryCache()
	mailer := &fakeMailer{}
	page := NewDBErrorPage(cfg, cache, mailer, zap.NewNop())
	now := time.Unix(1700000000, 0)
	page.now = func() time.Time { return now }

	w := httptest.NewRecorder()
	page.Display(context.Background(), w, errors.New("connection refused"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Connection Problems")
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "admin@example.com|Forum: Database Error!", mailer.sent[0])

	stamp, ok := cache.GetData(context.Background(), "db_last_error")
	require.True(t, ok)
	assert.Equal(t, strconv.FormatInt(now.Unix(), 10), stamp)

	page.Display(context.Background(), httptest.NewRecorder(), nil)
	assert.Len(t, mailer.sent, 1)
}

func TestDBErrorPageRateLimitOutlivesShortCacheEntries(t *testing.T) {
	cfg := &config.Config{DBErrorSend: true}
	cache := redis.NewMemoryCache()
	mailer := &fakeMailer{}
	page := NewDBErrorPage(cfg, cache, mailer, zap.NewNop())
	now := time.Unix(1700000000, 0)
	clock := func() time.Time { return now }
	page.now = clock
	cache.SetClock(clock)

	page.Display(context.Background(), httptest.NewRecorder(), nil)
	require.Len(t, mailer.sent, 1)

	now = now.Add(11 * time.Minute)
	page.Display(context.Background(), httptest.NewRecorder(), nil)
	assert.Len(t, mailer.sent, 1)

	now = now.Add(2 * 24 * time.Hour)
	page.Display(context.Background(), httptest.NewRecorder(), nil)
	assert.Len(t, mailer.sent, 1)

	now = now.Add(24 * time.Hour)
	page.Display(context.Background(), httptest.NewRecorder(), nil)
	assert.Len(t, mailer.sent, 2)
}

func TestDBErrorPageWritesFileWithCache(t *testing.T) {
	file := filepath.Join(t.TempDir(), "db_last_error")
	cfg := &config.Config{DBErrorSend: true, DBLastErrorFile: file}
	mailer := &fakeMailer{}
	page := NewDBErrorPage(cfg, redis.NewMemoryCache(), mailer, zap.NewNop())
	page.now = func() time.Time { return time.Unix(1700000000, 0) }

	page.Display(context.Background(), httptest.NewRecorder(), nil)
	require.Len(t, mailer.sent, 1)

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "1700000000", string(raw))

	// A fresh page with an empty cache still sees the file.
	again := NewDBErrorPage(cfg, redis.NewMemoryCache(), mailer, zap.NewNop())
	again.now = page.now
	again.Display(context.Background(), httptest.NewRecorder(), nil)
	assert.Len(t, mailer.sent, 1)
}

func TestDBErrorPageConcurrentRequestsSendOneAlert(t *testing.T) {
	cfg := &config.Config{DBErrorSend: true}
	mailer := &lockedMailer{}
	page := NewDBErrorPage(cfg, redis.NewMemoryCache(), mailer, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page.Display(context.Background(), httptest.NewRecorder(), nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, mailer.count())
}

func TestDBErrorPageFallsBackToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "db_last_error")
	cfg := &config.Config{DBErrorSend: true, DBLastErrorFile: file}
	mailer := &fakeMailer{}
	page := NewDBErrorPage(cfg, nil, mailer, zap.NewNop())
	now := time.Unix(1700000000, 0)
	page.now = func() time.Time { return now }

	page.Display(context.Background(), httptest.NewRecorder(), nil)
	require.Len(t, mailer.sent, 1)

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "1700000000", string(raw))

	now = now.Add(24 * time.Hour)
	page.Display(context.Background(), httptest.NewRecorder(), nil)
	assert.Len(t, mailer.sent, 1)

	now = now.Add(3 * 24 * time.Hour)
	page.Display(context.Background(), httptest.NewRecorder(), nil)
	assert.Len(t, mailer.sent, 2)
}

func TestDBErrorPageSilentInMaintenance(t *testing.T) {
	cfg := &config.Config{DBErrorSend: true, Maintenance: 1}
	mailer := &fakeMailer{}
	page := NewDBErrorPage(cfg, redis.NewMemoryCache(), mailer, zap.NewNop())

	page.Display(context.Background(), httptest.NewRecorder(), nil)
	assert.Empty(t, mailer.sent)
}
