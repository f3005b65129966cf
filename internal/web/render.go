package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/gin-gonic/gin/render"
	"github.com/shopspring/decimal"
)

//go:embed templates
var templateFS embed.FS

const (
	layout      = "base.html"
	adminLayout = "admin/base.html"
)

// Renderer is a gin HTMLRender holding one template set per page, each
// parsed on top of its layout so pages can redefine the same blocks.
type Renderer struct {
	templates map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

// NewRenderer parses every embedded page. mediaURL turns a storage key into a public URL.
func NewRenderer(mediaURL func(key string) string) (*Renderer, error) {
	funcs := Funcs(mediaURL)
	r := &Renderer{templates: make(map[string]*template.Template)}

	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	adminPages, err := fs.Glob(templateFS, "templates/admin/*.html")
	if err != nil {
		return nil, err
	}

	for _, p := range append(pages, adminPages...) {
		name := strings.TrimPrefix(p, "templates/")
		if name == layout || name == adminLayout {
			continue
		}
		base := layout
		if path.Dir(name) == "admin" {
			base = adminLayout
		}
		t, err := template.New(path.Base(base)).Funcs(funcs).ParseFS(templateFS, "templates/"+base, p)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Instance implements render.HTMLRender. Pages always execute through their layout.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.templates[name]
	if !ok {
		panic(fmt.Sprintf("template %q is not defined", name))
	}
	return render.HTML{Template: t, Name: t.Name(), Data: data}
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

func Funcs(mediaURL func(key string) string) template.FuncMap {
	if mediaURL == nil {
		mediaURL = func(key string) string { return "/media/" + key }
	}
	return template.FuncMap{
		"media": func(key string) string {
			if key == "" {
				return ""
			}
			return mediaURL(key)
		},
		"price": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
		"countryName": func(c model.Country) string {
			return c.DisplayName()
		},
		"fieldErrors": func(errs map[string][]string, field string) []string {
			return errs[field]
		},
	}
}
