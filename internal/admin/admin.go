package admin

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/booktime/booktime/internal/app/service"
	apperrors "github.com/booktime/booktime/internal/errors"
	"github.com/booktime/booktime/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// Services are the application services the admin screens operate on.
type Services struct {
	Products service.ProductService
	Tags     service.ProductTagService
	Images   service.ProductImageService
	Users    service.AuthService
	Imports  service.ImportService
}

// Admin serves the model admin screens of one or more sites.
type Admin struct {
	svc Services
}

func New(svc Services) *Admin {
	return &Admin{svc: svc}
}

type modelInfo struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Singular string `json:"singular"`
	URL      string `json:"url"`
}

var modelNames = map[string][2]string{
	ModelProducts:   {"Products", "product"},
	ModelTags:       {"Product tags", "product tag"},
	ModelImages:     {"Product images", "product image"},
	ModelUsers:      {"Users", "user"},
	ModelImportRuns: {"Import runs", "import run"},
}

func (s *Site) model(slug string) modelInfo {
	n := modelNames[slug]
	return modelInfo{Slug: slug, Title: n[0], Singular: n[1], URL: s.url(slug)}
}

func (s *Site) url(parts ...string) string {
	u := s.Prefix + "/"
	for _, p := range parts {
		u += p + "/"
	}
	return u
}

func (s *Site) objectURL(slug string, id uint) string {
	return s.url(slug, strconv.FormatUint(uint64(id), 10))
}

// Option is one choice of a select or a list filter.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Filter is a list sidebar filter bound to a query parameter.
type Filter struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Options []Option `json:"options"`
}

// Field is one input of a change form.
type Field struct {
	Name        string        `json:"name"`
	Label       string        `json:"label"`
	Type        string        `json:"type"`
	Value       string        `json:"value"`
	Checked     bool          `json:"checked,omitempty"`
	ReadOnly    bool          `json:"read_only,omitempty"`
	HTML        template.HTML `json:"html,omitempty"`
	Options     []Option      `json:"options,omitempty"`
	Prepopulate string        `json:"prepopulate,omitempty"`
}

// Toggle is an inline list action flipping a boolean column.
type Toggle struct {
	URL   string `json:"url"`
	Value bool   `json:"value"`
}

// Row is one object in a change list.
type Row struct {
	ID     uint          `json:"id"`
	Cells  []interface{} `json:"cells"`
	Toggle *Toggle       `json:"toggle,omitempty"`
	URL    string        `json:"url,omitempty"`
}

// Mount registers the site and its models on the router.
func (a *Admin) Mount(r gin.IRouter, site *Site) {
	g := r.Group(site.Prefix, site.requireSite())
	g.GET("/", a.index(site))

	w := site.writable()
	for _, slug := range site.Models {
		switch slug {
		case ModelProducts:
			p := &productAdmin{svc: a.svc, site: site}
			g.GET("/products/", p.list)
			g.GET("/products/add/", w, superuserOnly(), p.addForm)
			g.POST("/products/add/", w, superuserOnly(), p.add)
			g.GET("/products/:id/", p.changeForm)
			g.POST("/products/:id/", w, p.change)
			g.GET("/products/:id/delete/", w, p.confirmDelete)
			g.POST("/products/:id/delete/", w, p.delete)
			g.POST("/products/:id/in-stock", w, p.setInStock)
			g.PATCH("/products/:id/in-stock", w, p.setInStock)
		case ModelTags:
			t := &tagAdmin{svc: a.svc, site: site}
			g.GET("/tags/", t.list)
			g.GET("/tags/add/", w, superuserOnly(), t.addForm)
			g.POST("/tags/add/", w, superuserOnly(), t.add)
			g.GET("/tags/:id/", t.changeForm)
			g.POST("/tags/:id/", w, t.change)
			g.GET("/tags/:id/delete/", w, t.confirmDelete)
			g.POST("/tags/:id/delete/", w, t.delete)
		case ModelImages:
			i := &imageAdmin{svc: a.svc, site: site}
			g.GET("/images/", i.list)
			g.GET("/images/add/", w, i.addForm)
			g.POST("/images/add/", w, i.add)
			g.GET("/images/:id/", i.detail)
			g.GET("/images/:id/delete/", w, i.confirmDelete)
			g.POST("/images/:id/delete/", w, i.delete)
		case ModelUsers:
			u := &userAdmin{svc: a.svc, site: site}
			g.GET("/users/", u.list)
			g.GET("/users/add/", w, u.addForm)
			g.POST("/users/add/", w, u.add)
			g.GET("/users/:id/", u.changeForm)
			g.POST("/users/:id/", w, u.change)
		case ModelImportRuns:
			ir := &importRunAdmin{svc: a.svc, site: site}
			g.GET("/import-runs/", ir.list)
		}
	}
}

// index lists the models registered on the site
// GET /<site>/
func (a *Admin) index(site *Site) gin.HandlerFunc {
	return func(c *gin.Context) {
		models := make([]modelInfo, 0, len(site.Models))
		for _, slug := range site.Models {
			models = append(models, site.model(slug))
		}
		render(c, site, http.StatusOK, "admin/index.html", gin.H{"models": models})
	}
}

// superuserOnly guards object creation for models whose identifying fields
// only superusers may set.
func superuserOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isSuperuser(c) {
			forbidden(c, apperrors.AuthzSuperuser, "Only superusers can add this object.")
			c.Abort()
			return
		}
		c.Next()
	}
}

func isSuperuser(c *gin.Context) bool {
	user, ok := middleware.GetCurrentUser(c)
	return ok && user.IsSuperuser
}

func render(c *gin.Context, site *Site, status int, name string, data gin.H) {
	data["site"] = site
	if _, ok := data["read_only"]; !ok {
		data["read_only"] = site.ReadOnly
	}
	if user, ok := middleware.GetCurrentUser(c); ok {
		data["user"] = user
	}
	c.Negotiate(status, gin.Negotiate{
		Offered:  []string{binding.MIMEHTML, binding.MIMEJSON},
		HTMLName: name,
		Data:     data,
	})
}

func notFound(c *gin.Context) {
	if wantsJSON(c) {
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Not found")
		return
	}
	c.String(http.StatusNotFound, "404 Not Found")
}

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(binding.MIMEHTML, binding.MIMEJSON) == binding.MIMEJSON
}

// done redirects HTML clients back to the change list after a successful write.
func done(c *gin.Context, status int, listURL string, body interface{}) {
	if wantsJSON(c) {
		c.JSON(status, body)
		return
	}
	c.Redirect(http.StatusFound, listURL)
}

func objectID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func boolFilter(c *gin.Context, name, label string) (Filter, *bool) {
	value := c.Query(name)
	f := Filter{Name: name, Label: label, Options: []Option{
		{Value: "", Label: "All", Selected: value == ""},
		{Value: "true", Label: "Yes", Selected: value == "true"},
		{Value: "false", Label: "No", Selected: value == "false"},
	}}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return f, nil
	}
	return f, &b
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func checkbox(name, label string, checked, readOnly bool) Field {
	return Field{Name: name, Label: label, Type: "checkbox", Value: yesNo(checked), Checked: checked, ReadOnly: readOnly}
}

func postedBool(c *gin.Context, name string) bool {
	b, _ := strconv.ParseBool(c.PostForm(name))
	return b || c.PostForm(name) == "on"
}
