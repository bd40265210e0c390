// Package errorlog records forum errors and turns fatal ones into an error
// page that ends the request.
package errorlog

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/live627/elkarte.net/internal/config"
	"github.com/live627/elkarte.net/internal/lang"
	"github.com/live627/elkarte.net/internal/request"
	"github.com/live627/elkarte.net/internal/theme"
	"go.uber.org/zap"
)

// Renderer is the part of the theme the fatal page needs.
type Renderer interface {
	LoadTemplate(rc *request.Context, name string) error
	SetSubTemplate(rc *request.Context, name string)
	RenderSubTemplate(rc *request.Context) error
	Output(rc *request.Context) error
}

// OutputHook sees every runtime error after it was logged.
type OutputHook func(rc *request.Context, message, category string, level Level, file string, line int)

type Reporter struct {
	repo     Repository
	cfg      *config.Config
	lang     *lang.Bundle
	renderer Renderer
	logger   *zap.SugaredLogger
	now      func() time.Time

	typeHooks   []func() []string
	typesOnce   sync.Once
	categories  map[string]bool
	outputHooks []OutputHook

	mu   sync.Mutex
	last *Record
}

func NewReporter(repo Repository, cfg *config.Config, bundle *lang.Bundle, renderer Renderer, logger *zap.Logger) *Reporter {
	return &Reporter{
		repo:     repo,
		cfg:      cfg,
		lang:     bundle,
		renderer: renderer,
		logger:   logger.Sugar(),
		now:      time.Now,
	}
}

// RegisterErrorTypes adds a source of extra categories. Sources are read once,
// on the first logged error.
func (r *Reporter) RegisterErrorTypes(hook func() []string) {
	r.typeHooks = append(r.typeHooks, hook)
}

func (r *Reporter) OnOutputError(hook OutputHook) {
	r.outputHooks = append(r.outputHooks, hook)
}

func (r *Reporter) SetClock(now func() time.Time) {
	r.now = now
}

func (r *Reporter) knownCategory(category string) bool {
	r.typesOnce.Do(func() {
		r.categories = make(map[string]bool, len(knownCategories))
		for _, c := range knownCategories {
			r.categories[c] = true
		}
		for _, hook := range r.typeHooks {
			for _, c := range hook() {
				r.categories[c] = true
			}
		}
	})
	return r.categories[category]
}

// LogError stores message unless it repeats the previous record and returns
// it sanitised. With logging disabled the message is returned untouched.
func (r *Reporter) LogError(rc *request.Context, message, category, file string, line int) string {
	if r.cfg.ErrorLogging == config.ErrorLoggingOff {
		return message
	}

	message = theme.EscapeMessage(message)
	file = strings.ReplaceAll(file, `\`, "/")
	if line < 0 {
		line = 0
	}
	if !r.knownCategory(category) {
		category = CategoryGeneral
	}

	rec := Record{
		LogTime:   r.now().Unix(),
		URL:       r.queryString(rc),
		Message:   message,
		ErrorType: category,
		File:      file,
		Line:      line,
	}
	if rc != nil {
		rec.MemberID = rc.Member.ID
		rec.IP = rc.IP
		rec.Session = rc.Session.Token
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last != nil && r.last.sameAs(rec) {
		return message
	}
	if err := r.repo.Insert(&rec); err != nil {
		r.logger.Errorw("Failed to store error log record", "error", err, "message", message, "category", category)
		return message
	}
	r.last = &rec

	return message
}

var (
	sescPattern  = regexp.MustCompile(`;sesc=[^&;]+`)
	queryEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// queryString is the request's query as logged: session check value
// collapsed, session key removed, HTML escaped and prefixed with '?'.
func (r *Reporter) queryString(rc *request.Context) string {
	if rc == nil || rc.Request == nil {
		return ""
	}

	qs := rc.RawQuery
	if qs == "" && rc.Request.URL != nil {
		qs = rc.Request.URL.RequestURI()
		if r.cfg.ScriptURL != "" {
			qs = strings.Replace(qs, r.cfg.ScriptURL, "", 1)
		}
	}

	qs = sescPattern.ReplaceAllString(qs, ";sesc")
	if rc.Session.Key != "" && r.cfg.SessionCookie != "" {
		pair := regexp.MustCompile(regexp.QuoteMeta(r.cfg.SessionCookie+"="+rc.Session.Key) + `[&;]`)
		qs = pair.ReplaceAllString(qs, "")
	}

	prefix := "?"
	if rc.SSI {
		prefix = ""
	}
	qs = queryEscaper.Replace(prefix + qs)

	if board, ok := postedOnlyBoard(rc); ok {
		if qs == "" {
			qs = "board=" + board
		} else {
			qs += ";board=" + board
		}
	}
	return qs
}

func postedOnlyBoard(rc *request.Context) (string, bool) {
	req := rc.Request
	if req.Method != "POST" {
		return "", false
	}
	_ = req.ParseForm()
	if _, inQuery := req.URL.Query()["board"]; inQuery {
		return "", false
	}
	values, ok := req.PostForm["board"]
	if !ok || len(values) == 0 {
		return "", false
	}
	return queryEscaper.Replace(values[0]), true
}
