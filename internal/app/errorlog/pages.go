package errorlog

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/live627/elkarte.net/internal/config"
	"github.com/live627/elkarte.net/internal/providers/mail"
	"github.com/live627/elkarte.net/internal/providers/redis"
	"go.uber.org/zap"
)

const (
	dbLastErrorKey = "db_last_error"
	dbAlertEvery   = 3 * 24 * time.Hour
)

// SetFatalErrorHeaders marks the response as an uncacheable 503.
func SetFatalErrorHeaders(w http.ResponseWriter, now time.Time) {
	h := w.Header()
	h.Set("Expires", "Mon, 26 Jul 1997 05:00:00 GMT")
	h.Set("Last-Modified", now.UTC().Format(http.TimeFormat))
	h.Set("Cache-Control", "no-cache")
	h.Set("Retry-After", "3600")
	h.Set("Content-Type", "text/html; charset=UTF-8")
	w.WriteHeader(http.StatusServiceUnavailable)
}

func barePage(title, body string) string {
	return `<!DOCTYPE html>
<html>
	<head>
		<meta name="robots" content="noindex" />
		<title>` + title + `</title>
	</head>
	<body>
		<h3>` + title + `</h3>
		` + body + `
	</body>
</html>`
}

// DisplayMaintenanceMessage writes the full block maintenance page. The
// message is trusted HTML set by the administrator.
func DisplayMaintenanceMessage(w http.ResponseWriter, cfg *config.Config) {
	SetFatalErrorHeaders(w, time.Now())
	if cfg.Maintenance == 0 {
		return
	}
	_, _ = fmt.Fprint(w, barePage(html.EscapeString(cfg.MaintenanceTitle), cfg.MaintenanceMessage))
}

func DisplayLoadAvgError(w http.ResponseWriter) {
	SetFatalErrorHeaders(w, time.Now())
	_, _ = fmt.Fprint(w, barePage("Temporarily Unavailable",
		"Due to high stress on the server the forum is temporarily unavailable.  Please try again later."))
}

// DBErrorPage shows the connection problems page and alerts the webmaster,
// at most once every three days.
type DBErrorPage struct {
	mu     sync.Mutex
	cfg    *config.Config
	cache  redis.Cache
	mailer mail.Sender
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewDBErrorPage accepts a nil cache; the last alert time is then kept in
// cfg.DBLastErrorFile only.
func NewDBErrorPage(cfg *config.Config, cache redis.Cache, mailer mail.Sender, logger *zap.Logger) *DBErrorPage {
	return &DBErrorPage{
		cfg:    cfg,
		cache:  cache,
		mailer: mailer,
		logger: logger.Sugar(),
		now:    time.Now,
	}
}

func (p *DBErrorPage) Display(ctx context.Context, w http.ResponseWriter, dbErr error) {
	now := p.now()
	SetFatalErrorHeaders(w, now)

	if p.cfg.Maintenance == 0 && p.cfg.DBErrorSend && p.claimAlert(ctx, now) {
		p.sendAlert(dbErr)
	}

	_, _ = fmt.Fprint(w, barePage("Connection Problems",
		"Sorry, we were unable to connect to the database.  This may be caused by the server being busy.  Please try again later."))
}

// claimAlert records now as the last alert time and reports true when the
// previous alert is older than dbAlertEvery. Both the cache and the file
// keep the time so either one alone enforces the limit.
func (p *DBErrorPage) claimAlert(ctx context.Context, now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	last := p.readLastErrorFile()
	if cached, ok := p.cachedLastError(ctx); ok && cached > last {
		last = cached
	}
	if last >= now.Add(-dbAlertEvery).Unix() {
		return false
	}

	stamp := strconv.FormatInt(now.Unix(), 10)
	if p.cache != nil {
		p.cache.PutData(ctx, dbLastErrorKey, stamp, dbAlertEvery)
	}
	p.writeLastErrorFile(stamp)
	return true
}

func (p *DBErrorPage) cachedLastError(ctx context.Context) (int64, bool) {
	if p.cache == nil {
		return 0, false
	}
	v, ok := p.cache.GetData(ctx, dbLastErrorKey)
	if !ok {
		return 0, false
	}
	t, err := strconv.ParseInt(v, 10, 64)
	return t, err == nil
}

func (p *DBErrorPage) readLastErrorFile() int64 {
	if p.cfg.DBLastErrorFile == "" {
		return 0
	}
	raw, err := os.ReadFile(p.cfg.DBLastErrorFile)
	if err != nil {
		return 0
	}
	t, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0
	}
	return t
}

func (p *DBErrorPage) writeLastErrorFile(stamp string) {
	if p.cfg.DBLastErrorFile == "" {
		return
	}
	if err := os.WriteFile(p.cfg.DBLastErrorFile, []byte(stamp), 0o644); err != nil {
		p.logger.Warnw("Failed to record database error time", "error", err, "file", p.cfg.DBLastErrorFile)
	}
}

func (p *DBErrorPage) sendAlert(dbErr error) {
	if p.mailer == nil {
		return
	}
	body := "There has been a problem with the database!"
	if dbErr != nil {
		body += "\n" + p.cfg.DBDriver + " reported:\n" + dbErr.Error()
	}
	body += "\n\nThis is a notice email to let you know that the system could not connect to the database, contact your host if this continues."

	if err := p.mailer.Send(p.cfg.WebmasterEmail, p.cfg.ForumName+": Database Error!", body); err != nil {
		p.logger.Warnw("Failed to send database error alert", "error", err)
	}
}
