package merge

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/live627/elkarte.net/internal/app/errorlog"
	"github.com/live627/elkarte.net/internal/lang"
	"github.com/live627/elkarte.net/internal/request"
)

const templateName = "MergeTopics"

// Renderer is the part of the theme the merge pages use.
type Renderer interface {
	LoadTemplate(rc *request.Context, name string) error
	SetSubTemplate(rc *request.Context, name string)
	Output(rc *request.Context) error
}

// Reporter raises fatal errors. Both methods never return.
type Reporter interface {
	Fatal(rc *request.Context, message, category string)
	FatalLang(rc *request.Context, key, category string, args ...interface{})
}

type Handler interface {
	MergeTopics(c *gin.Context)
}

type handler struct {
	service  Service
	renderer Renderer
	reporter Reporter
	bundle   *lang.Bundle
}

func NewHandler(service Service, renderer Renderer, reporter Reporter, bundle *lang.Bundle) Handler {
	return &handler{
		service:  service,
		renderer: renderer,
		reporter: reporter,
		bundle:   bundle,
	}
}

// MergeTopics serves ?action=mergetopics and dispatches on sa.
func (h *handler) MergeTopics(c *gin.Context) {
	rc := request.FromGin(c)

	switch ParseSubAction(requestValue(c, "sa")) {
	case SubActionIndex:
		h.index(c, rc)
	case SubActionOptions:
		h.options(c, rc)
	case SubActionExecute:
		h.execute(c, rc)
	case SubActionDone:
		h.done(c, rc)
	}
}

func (h *handler) index(c *gin.Context, rc *request.Context) {
	p := IndexParams{}
	if from, ok := requestLookup(c, "from"); ok {
		p.HasFrom = true
		p.From = parseUint(from)
	}
	if target, ok := requestLookup(c, "targetboard"); ok {
		p.HasTarget = true
		p.TargetBoard = parseUint(target)
	}
	p.Start, _ = strconv.Atoi(requestValue(c, "start"))

	view, err := h.service.Index(rc, p)
	if err != nil {
		h.fail(rc, err)
		return
	}
	h.render(rc, "merge", view)
}

func (h *handler) options(c *gin.Context, rc *request.Context) {
	view, err := h.service.Options(rc, executeParams(c, rc))
	if err != nil {
		h.fail(rc, err)
		return
	}
	h.render(rc, "merge_extra_options", view)
}

func (h *handler) execute(c *gin.Context, rc *request.Context) {
	result, err := h.service.Execute(rc, executeParams(c, rc))
	if err != nil {
		h.fail(rc, err)
		return
	}
	c.Redirect(http.StatusFound, result.RedirectURL)
}

func (h *handler) done(c *gin.Context, rc *request.Context) {
	view := &DoneView{}
	view.TargetTopic, _ = strconv.Atoi(requestValue(c, "to"))
	view.TargetBoard, _ = strconv.Atoi(requestValue(c, "targetboard"))
	h.render(rc, "merge_done", view)
}

func (h *handler) render(rc *request.Context, subTemplate string, view interface{}) {
	if err := h.renderer.LoadTemplate(rc, templateName); err != nil {
		h.reporter.Fatal(rc, err.Error(), errorlog.CategoryTemplate)
		return
	}
	h.renderer.SetSubTemplate(rc, subTemplate)
	rc.Page.Title = h.bundle.Get(rc.Language, "merge")
	rc.Set("merge", view)
	if err := h.renderer.Output(rc); err != nil {
		h.reporter.Fatal(rc, err.Error(), errorlog.CategoryTemplate)
	}
}

// fail turns a service error into a fatal error page.
func (h *handler) fail(rc *request.Context, err error) {
	if le, ok := AsLangError(err); ok {
		h.reporter.FatalLang(rc, le.Key, le.Category, le.Args...)
		return
	}
	h.reporter.Fatal(rc, err.Error(), errorlog.CategoryDatabase)
}

func executeParams(c *gin.Context, rc *request.Context) ExecuteParams {
	p := ExecuteParams{
		From:          parseUint(requestValue(c, "from")),
		To:            parseUint(requestValue(c, "to")),
		Topics:        ParseIDs(c.PostFormArray("topics[]")),
		Notifications: ParseIDs(c.PostFormArray("notifications[]")),
		Board:         rc.Board,
		Subject:       parseUint(c.PostForm("subject")),
		Token:         requestValue(c, "sesc"),
	}
	p.Poll, _ = strconv.ParseInt(strings.TrimSpace(c.PostForm("poll")), 10, 64)
	p.CustomSubject, p.HasCustomSubject = c.GetPostForm("custom_subject")
	p.EnforceSubject = c.PostForm("enforce_subject")
	return p
}

// requestLookup reads a parameter from the form body, then the query string.
func requestLookup(c *gin.Context, key string) (string, bool) {
	if v, ok := c.GetPostForm(key); ok {
		return v, true
	}
	return c.GetQuery(key)
}

func requestValue(c *gin.Context, key string) string {
	v, _ := requestLookup(c, key)
	return v
}

func parseUint(raw string) uint64 {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
