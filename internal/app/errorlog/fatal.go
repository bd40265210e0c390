package errorlog

import (
	"net/http"
	"strings"

	"github.com/live627/elkarte.net/internal/config"
	"github.com/live627/elkarte.net/internal/request"
)

// StatusFor maps a language error key to the HTTP status of its page.
func StatusFor(key string) int {
	switch {
	case key == "no_access", key == "session_verify_fail", strings.HasPrefix(key, "cannot_"):
		return http.StatusForbidden
	case key == "no_board", key == "no_topic_id":
		return http.StatusNotFound
	case key == "merge_need_more_topics":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (r *Reporter) shouldLog(category string) bool {
	return category != "" || r.cfg.ErrorLogging == config.ErrorLoggingAll
}

// Fatal shows message on the error page and ends the request. It does not
// return. An empty category skips logging.
func (r *Reporter) Fatal(rc *request.Context, message, category string) {
	if r.shouldLog(category) {
		message = r.LogError(rc, message, category, "", 0)
	}
	if rc.Page.Status < http.StatusBadRequest {
		rc.Page.Status = http.StatusInternalServerError
	}
	r.SetupFatalErrorContext(rc, message, "")
}

// FatalLang is Fatal for a message taken from the language packs. The log
// gets the forum's default language, the page the member's own.
func (r *Reporter) FatalLang(rc *request.Context, key, category string, args ...interface{}) {
	if r.shouldLog(category) {
		r.LogError(rc, r.lang.Format(r.cfg.DefaultLanguage, key, args...), category, "", 0)
	}
	rc.Page.Status = StatusFor(key)
	r.SetupFatalErrorContext(rc, r.lang.Format(rc.Language, key, args...), key)
}

// HandleError logs a runtime error. Errors of LevelError end the request;
// anything else returns to the caller.
func (r *Reporter) HandleError(rc *request.Context, level Level, message, file string, line int) {
	if level == LevelStrict && r.cfg.ErrorLogging != config.ErrorLoggingAll {
		return
	}

	category := CategoryGeneral
	if strings.Contains(strings.ToLower(message), "undefined") {
		category = CategoryUndefinedVars
	}

	logged := r.LogError(rc, level.String()+": "+message, category, file, line)

	for _, hook := range r.outputHooks {
		hook(rc, logged, category, level, file, line)
	}

	if file == "Unknown" || level != LevelError {
		return
	}

	display := message
	if rc.Member.IsAdmin {
		display = logged
	}
	if rc.Page.Status < http.StatusBadRequest {
		rc.Page.Status = http.StatusInternalServerError
	}
	r.SetupFatalErrorContext(rc, display, "")
}

// SetupFatalErrorContext renders the error page and unwinds the request with
// an *Abort. A second call within the same request skips rendering.
func (r *Reporter) SetupFatalErrorContext(rc *request.Context, message, code string) {
	rc.FatalDepth++
	if rc.FatalDepth > 1 {
		panic(&Abort{Message: message, Code: code, Status: statusOf(rc)})
	}

	rc.Page.RobotNoIndex = true
	if rc.Page.ErrorTitle == "" {
		rc.Page.ErrorTitle = r.lang.Get(rc.Language, "error_occurred")
	}
	if rc.Page.ErrorMessage == "" {
		rc.Page.ErrorMessage = message
	}
	rc.Page.ErrorCode = code
	if rc.Page.Title == "" {
		rc.Page.Title = rc.Page.ErrorTitle
	}
	rc.Page.Status = statusOf(rc)

	abort := &Abort{Message: rc.Page.ErrorMessage, Code: code, Status: rc.Page.Status}

	if err := r.renderer.LoadTemplate(rc, "Errors"); err != nil {
		r.logger.Errorw("Failed to load error template", "error", err)
		panic(abort)
	}
	r.renderer.SetSubTemplate(rc, "fatal_error")

	var err error
	switch {
	case rc.SSI && rc.OnError != nil:
		rc.OnError(rc)
	case rc.SSI:
		err = r.renderer.RenderSubTemplate(rc)
	default:
		err = r.renderer.Output(rc)
	}
	if err != nil {
		r.logger.Errorw("Failed to render error page", "error", err, "code", code)
	} else {
		abort.Rendered = true
	}

	panic(abort)
}

func statusOf(rc *request.Context) int {
	if rc.Page.Status >= http.StatusBadRequest {
		return rc.Page.Status
	}
	return http.StatusInternalServerError
}
