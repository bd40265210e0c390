package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/live627/elkarte.net/internal/app/board"
	"github.com/live627/elkarte.net/internal/app/errorlog"
	"github.com/live627/elkarte.net/internal/app/health"
	"github.com/live627/elkarte.net/internal/app/merge"
	"github.com/live627/elkarte.net/internal/app/message"
	"github.com/live627/elkarte.net/internal/app/session"
	"github.com/live627/elkarte.net/internal/app/topic"
	"github.com/live627/elkarte.net/internal/config"
	"github.com/live627/elkarte.net/internal/gateways/websocket"
	"github.com/live627/elkarte.net/internal/middleware"
	"github.com/live627/elkarte.net/internal/request"
	"go.uber.org/zap"
)

// FatalReporter ends a request with a fatal error page.
type FatalReporter interface {
	FatalLang(rc *request.Context, key, category string, args ...interface{})
	Recovery() gin.HandlerFunc
}

type Router struct {
	Engine   *gin.Engine
	cfg      *config.Config
	reporter FatalReporter
	actions  map[string]gin.HandlerFunc
	forum    *gin.RouterGroup
}

// NewRouter builds the engine. gates run in front of the forum front
// controller only; the JSON API and health check skip them.
func NewRouter(cfg *config.Config, logger *zap.Logger, resolver request.MemberResolver, reporter FatalReporter, gates ...gin.HandlerFunc) *Router {
	engine := gin.New()
	engine.Use(middleware.CORSMiddleware(cfg))
	engine.Use(middleware.LoggerMiddleware(logger))
	engine.Use(request.Middleware(cfg, resolver, logger))
	engine.Use(reporter.Recovery())

	r := &Router{
		Engine:   engine,
		cfg:      cfg,
		reporter: reporter,
		actions:  make(map[string]gin.HandlerFunc),
	}

	r.forum = engine.Group("/", gates...)
	r.forum.Any(scriptPath(cfg), r.dispatch)
	return r
}

func scriptPath(cfg *config.Config) string {
	p := cfg.ScriptURL
	if i := strings.Index(p, "://"); i >= 0 {
		if j := strings.IndexByte(p[i+3:], '/'); j >= 0 {
			p = p[i+3+j:]
		} else {
			p = "/"
		}
	}
	if p == "" {
		p = "/index.php"
	}
	return p
}

// dispatch is the front controller: ?action= selects the handler.
func (r *Router) dispatch(c *gin.Context) {
	h, ok := r.actions[c.Query("action")]
	if !ok {
		r.reporter.FatalLang(request.FromGin(c), "no_access", "")
		return
	}
	h(c)
}

func (r *Router) RegisterMergeActions(handler merge.Handler) {
	merge.RegisterActions(r.actions, handler)
}

func (r *Router) RegisterHealthRoutes(handler health.Handler) {
	health.RegisterRoutes(r.Engine.Group("/api"), handler)
}

func (r *Router) RegisterWebSocketRoutes(hub *websocket.Hub) {
	websocket.RegisterRoutes(r.Engine, hub)
}

func (r *Router) RegisterBoardRoutes(handler board.Handler) {
	board.RegisterRoutes(r.Engine.Group("/api"), handler)
}

func (r *Router) RegisterSessionRoutes(handler session.Handler) {
	session.RegisterRoutes(r.Engine.Group("/api"), handler)
}

func (r *Router) RegisterTopicRoutes(handler topic.Handler) {
	topic.RegisterRoutes(r.Engine.Group("/api"), handler)
}

func (r *Router) RegisterMessageRoutes(handler message.Handler) {
	message.RegisterRoutes(r.Engine.Group("/api"), handler)
}

func (r *Router) RegisterErrorLogRoutes(handler errorlog.Handler) {
	errorlog.RegisterRoutes(r.Engine.Group("/api"), handler)
}

// Handler accepts forum style query strings separated by semicolons. The
// query as sent is kept for the error log.
func (r *Router) Handler() http.Handler {
	next := http.AllowQuerySemicolons(r.Engine)
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if strings.Contains(req.URL.RawQuery, ";") {
			req = req.WithContext(request.WithRawQuery(req.Context(), req.URL.RawQuery))
		}
		next.ServeHTTP(w, req)
	})
}

func (r *Router) Serve(addr string) error {
	return http.ListenAndServe(addr, r.Handler())
}
