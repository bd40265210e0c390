// Package theme renders forum pages from the embedded template files. A page
// is the "header" layer, the selected sub-template and the "footer" layer.
package theme

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"path"
	"strings"

	"github.com/live627/elkarte.net/internal/lang"
	"github.com/live627/elkarte.net/internal/request"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

type Renderer struct {
	tmpl  *template.Template
	files map[string]bool
	lang  *lang.Bundle
}

func New(bundle *lang.Bundle) (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	entries, err := templatesFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	files := make(map[string]bool, len(entries))
	for _, e := range entries {
		files[strings.TrimSuffix(e.Name(), path.Ext(e.Name()))] = true
	}

	return &Renderer{tmpl: tmpl, files: files, lang: bundle}, nil
}

// LoadTemplate marks a template file as used by the page. Its sub-templates
// become available to SetSubTemplate.
func (r *Renderer) LoadTemplate(rc *request.Context, name string) error {
	if !r.files[name] {
		return fmt.Errorf("template %s not found", name)
	}
	for _, loaded := range rc.Page.Templates {
		if loaded == name {
			return nil
		}
	}
	rc.Page.Templates = append(rc.Page.Templates, name)
	return nil
}

func (r *Renderer) SetSubTemplate(rc *request.Context, name string) {
	rc.Page.SubTemplate = name
}

// RenderSubTemplate writes the sub-template alone, without layers.
func (r *Renderer) RenderSubTemplate(rc *request.Context) error {
	var buf bytes.Buffer
	if err := r.execute(&buf, rc, rc.Page.SubTemplate); err != nil {
		return err
	}
	return r.write(rc, buf.Bytes())
}

// Output renders the full page. Nothing is written when rendering fails.
func (r *Renderer) Output(rc *request.Context) error {
	var buf bytes.Buffer
	for _, name := range []string{"header", rc.Page.SubTemplate, "footer"} {
		if err := r.execute(&buf, rc, name); err != nil {
			return err
		}
	}
	return r.write(rc, buf.Bytes())
}

func (r *Renderer) execute(buf *bytes.Buffer, rc *request.Context, name string) error {
	if name == "" {
		return fmt.Errorf("no sub-template selected")
	}
	if r.tmpl.Lookup(name) == nil {
		return fmt.Errorf("sub-template %s not found", name)
	}
	if err := r.tmpl.ExecuteTemplate(buf, name, r.view(rc)); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}

func (r *Renderer) write(rc *request.Context, body []byte) error {
	status := rc.Page.Status
	if status == 0 {
		status = http.StatusOK
	}
	rc.Writer.Header().Set("Content-Type", "text/html; charset=UTF-8")
	rc.Writer.WriteHeader(status)
	_, err := rc.Writer.Write(body)
	return err
}

type View struct {
	Page      *request.Page
	Member    request.Member
	Data      map[string]interface{}
	ScriptURL string
	ForumName string

	language string
	bundle   *lang.Bundle
}

func (r *Renderer) view(rc *request.Context) View {
	v := View{
		Page:     &rc.Page,
		Member:   rc.Member,
		Data:     rc.Page.Data,
		language: rc.Language,
		bundle:   r.lang,
	}
	if rc.Settings != nil {
		v.ScriptURL = rc.Settings.ScriptURL
		v.ForumName = rc.Settings.ForumName
	}
	return v
}

func (v View) T(key string) string {
	return v.bundle.Get(v.language, key)
}

func (v View) ErrorHTML() template.HTML {
	return template.HTML(EscapeMessage(v.Page.ErrorMessage))
}

// Stored outputs text the forum keeps HTML-escaped, such as subjects, without
// escaping it a second time. Stray markup is still neutralised.
func (v View) Stored(text string) template.HTML {
	return template.HTML(escaper.Replace(text))
}

var (
	escaper  = strings.NewReplacer("<", "&lt;", ">", "&gt;", `"`, "&quot;")
	restorer = strings.NewReplacer(
		"&lt;br /&gt;", "<br />",
		"&lt;b&gt;", "<strong>",
		"&lt;/b&gt;", "</strong>",
		"&lt;strong&gt;", "<strong>",
		"&lt;/strong&gt;", "</strong>",
		"\n", "<br />",
	)
)

// EscapeMessage escapes markup in an error message except line breaks and
// bold text. Ampersands are left alone so entities survive.
func EscapeMessage(msg string) string {
	return restorer.Replace(escaper.Replace(msg))
}
