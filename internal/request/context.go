// Package request carries the per-request forum state (actor, settings and
// page being rendered) that handlers pass explicitly to every operation.
package request

import (
	"context"
	"net/http"

	"github.com/live627/elkarte.net/internal/config"
)

const ginKey = "forum_request"

type Member struct {
	ID       uint64
	Name     string
	GroupID  uint64
	Language string
	IsAdmin  bool
}

func (m Member) IsGuest() bool {
	return m.ID == 0
}

type SessionInfo struct {
	ID    uint64
	Key   string
	Token string
}

// Page is what the theme renders for the current request.
type Page struct {
	Title        string
	Templates    []string
	SubTemplate  string
	Data         map[string]interface{}
	Status       int
	RobotNoIndex bool
	ErrorTitle   string
	ErrorMessage string
	ErrorCode    string
}

type Context struct {
	Request  *http.Request
	Writer   http.ResponseWriter
	RawQuery string

	Member   Member
	Session  SessionInfo
	IP       string
	Board    uint64
	Language string
	Settings *config.Config

	// ModCache holds board lists already resolved per permission.
	ModCache map[string][]uint64

	// SSI marks an embedded render: no layers are emitted and OnError,
	// when set, replaces the fatal error page.
	SSI     bool
	OnError func(rc *Context)

	FatalDepth int
	Page       Page
}

func New(w http.ResponseWriter, r *http.Request, cfg *config.Config) *Context {
	rc := &Context{
		Request:  r,
		Writer:   w,
		Settings: cfg,
		ModCache: make(map[string][]uint64),
		Page:     Page{Data: make(map[string]interface{})},
	}
	if cfg != nil {
		rc.Language = cfg.DefaultLanguage
	}
	if r != nil {
		rc.RawQuery = RawQueryFrom(r.Context())
		if rc.RawQuery == "" {
			rc.RawQuery = r.URL.RawQuery
		}
	}
	return rc
}

// Ctx returns the context of the underlying HTTP request.
func (rc *Context) Ctx() context.Context {
	if rc == nil || rc.Request == nil {
		return context.Background()
	}
	return rc.Request.Context()
}

func (rc *Context) Set(key string, value interface{}) {
	if rc.Page.Data == nil {
		rc.Page.Data = make(map[string]interface{})
	}
	rc.Page.Data[key] = value
}

type rawQueryKey struct{}

// WithRawQuery keeps the query string as the client sent it, before
// semicolons are rewritten to ampersands.
func WithRawQuery(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, rawQueryKey{}, raw)
}

func RawQueryFrom(ctx context.Context) string {
	raw, _ := ctx.Value(rawQueryKey{}).(string)
	return raw
}
