package web

import (
	"net/http/httptest"
	"testing"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderPage(t *testing.T, r *Renderer, name string, data gin.H) string {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, r.Instance(name, data).Render(w))
	return w.Body.String()
}

func TestRenderer_StorefrontPages(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	pages := []string{
		"home.html", "about_us.html", "contact_form.html", "signup.html", "login.html",
		"product_list.html", "basket.html", "address_list.html", "address_form.html", "error.html",
	}
	for _, name := range pages {
		t.Run(name, func(t *testing.T) {
			require.True(t, r.Has(name))
			body := renderPage(t, r, name, gin.H{})
			assert.Contains(t, body, "BookTime")
			assert.Contains(t, body, "<nav>")
		})
	}
}

func TestRenderer_ProductDetail(t *testing.T) {
	r, err := NewRenderer(func(key string) string { return "https://cdn.example.com/" + key })
	require.NoError(t, err)

	product := &model.Product{
		ID:      3,
		Name:    "The Prince",
		Slug:    "the-prince",
		Price:   decimal.RequireFromString("1.5"),
		InStock: true,
		Tags:    []model.ProductTag{{Name: "Philosophy", Slug: "philosophy"}},
		Images:  []model.ProductImage{{Thumbnail: "product-thumbnails/the-prince.jpg"}},
	}
	body := renderPage(t, r, "product_detail.html", gin.H{"object": product})

	assert.Contains(t, body, "<title>BookTime - The Prince</title>")
	assert.Contains(t, body, "1.50")
	assert.Contains(t, body, `href="/products/philosophy/"`)
	assert.Contains(t, body, `src="https://cdn.example.com/product-thumbnails/the-prince.jpg"`)
	assert.Contains(t, body, "/add_to_basket/?product_id=3")
}

func TestRenderer_FormErrorsAndEscaping(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	body := renderPage(t, r, "contact_form.html", gin.H{
		"form":   struct{ Name, Message string }{Name: "<script>", Message: ""},
		"errors": map[string][]string{"message": {"This field is required."}},
	})
	assert.Contains(t, body, "This field is required.")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.NotContains(t, body, "<script>")
}

func TestRenderer_AdminPages(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	site := struct{ Title, Prefix string }{"BookTime mega admin", "/admin"}
	for _, name := range []string{"admin/index.html", "admin/list.html", "admin/form.html", "admin/confirm_delete.html"} {
		body := renderPage(t, r, name, gin.H{"site": site})
		assert.Contains(t, body, "BookTime mega admin", name)
		assert.NotContains(t, body, "<nav>", name)
	}
}

func TestRenderer_UnknownTemplatePanics(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)
	assert.Panics(t, func() { r.Instance("missing.html", nil) })
}
