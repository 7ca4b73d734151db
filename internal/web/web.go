// Package web holds the embedded browser assets and the template renderer.
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/charmbracelet/log"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer renders the embedded HTML templates.
type Renderer struct {
	templates *template.Template
	logger    *log.Logger
}

// NewRenderer parses the embedded templates. It returns an error only when
// the embedded files fail to parse, which indicates a build problem.
func NewRenderer(logger *log.Logger) (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl, logger: logger}, nil
}

// Render writes the named template to w with the given data.
func (r *Renderer) Render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		r.logger.Error("failed to render template", "template", name, "error", err)
	}
}
