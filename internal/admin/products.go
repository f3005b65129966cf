package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/booktime/booktime/internal/app/forms"
	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/internal/app/service"
	apperrors "github.com/booktime/booktime/internal/errors"
	"github.com/booktime/booktime/internal/middleware"
	"github.com/booktime/booktime/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type productAdmin struct {
	svc  Services
	site *Site
}

var productColumns = []string{"Name", "Slug", "In stock", "Price"}

// productForm holds the change form values as posted or as stored.
type productForm struct {
	Name        string
	Slug        string
	Description string
	Price       string
	Active      bool
	InStock     bool
	TagIDs      []uint
}

func productFormFrom(p *model.Product) productForm {
	f := productForm{
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Active:      p.Active,
		InStock:     p.InStock,
	}
	for _, t := range p.Tags {
		f.TagIDs = append(f.TagIDs, t.ID)
	}
	return f
}

func bindProductForm(c *gin.Context) (productForm, forms.Errors) {
	errs := forms.Errors{}
	f := productForm{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Slug:        strings.TrimSpace(c.PostForm("slug")),
		Description: c.PostForm("description"),
		Price:       strings.TrimSpace(c.PostForm("price")),
		Active:      postedBool(c, "active"),
		InStock:     postedBool(c, "in_stock"),
	}
	ids, ok := postedIDs(c, "tags")
	if !ok {
		errs.Add("tags", "Select a valid choice.")
	}
	f.TagIDs = ids
	return f, errs
}

// input converts the form to a service update; name and slug are only
// included when the user may edit them.
func (f productForm) input(identity bool, errs forms.Errors) service.ProductInput {
	in := service.ProductInput{
		Description: &f.Description,
		Active:      &f.Active,
		InStock:     &f.InStock,
		TagIDs:      &f.TagIDs,
	}
	if identity {
		in.Name = &f.Name
		in.Slug = &f.Slug
		if f.Name == "" {
			errs.Add("name", "This field is required.")
		}
	}
	if f.Price == "" {
		errs.Add("price", "This field is required.")
	} else if price, err := decimal.NewFromString(f.Price); err != nil {
		errs.Add("price", "Enter a number.")
	} else {
		in.Price = &price
	}
	return in
}

// list shows products with stock toggles, filters and name search
// GET /<site>/products/?q=&active=&in_stock=&updated_since=
func (p *productAdmin) list(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	activeFilter, active := boolFilter(c, "active", "By active")
	stockFilter, inStock := boolFilter(c, "in_stock", "By in stock")
	updatedFilter, since := updatedSinceFilter(c, time.Now())
	search := strings.TrimSpace(c.Query("q"))

	products, total, err := p.svc.Products.List(repository.ProductFilter{
		Search:       search,
		Active:       active,
		InStock:      inStock,
		UpdatedSince: since,
	})
	if err != nil {
		log.Error("Failed to list products for admin", err)
		apperrors.InternalError(c, "")
		return
	}

	rows := make([]Row, 0, len(products))
	for _, product := range products {
		row := Row{
			ID:    product.ID,
			Cells: []interface{}{product.Name, product.Slug, yesNo(product.InStock), product.Price.StringFixed(2)},
			URL:   p.site.objectURL(ModelProducts, product.ID),
		}
		if !p.site.ReadOnly {
			row.Toggle = &Toggle{URL: row.URL + "in-stock", Value: product.InStock}
		}
		rows = append(rows, row)
	}

	render(c, p.site, http.StatusOK, "admin/list.html", gin.H{
		"model":      p.site.model(ModelProducts),
		"can_add":    !p.site.ReadOnly && isSuperuser(c),
		"add_url":    p.site.url(ModelProducts, "add"),
		"searchable": true,
		"search":     search,
		"filters":    []Filter{activeFilter, stockFilter, updatedFilter},
		"columns":    productColumns,
		"rows":       rows,
		"count":      total,
	})
}

// addForm shows an empty product form
// GET /<site>/products/add/
func (p *productAdmin) addForm(c *gin.Context) {
	p.renderForm(c, http.StatusOK, nil, productForm{Active: true, InStock: true}, forms.Errors{})
}

// add creates a product
// POST /<site>/products/add/
func (p *productAdmin) add(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	f, errs := bindProductForm(c)
	in := f.input(true, errs)
	if len(errs) > 0 {
		p.renderForm(c, http.StatusOK, nil, f, errs)
		return
	}

	product, err := p.svc.Products.Create(in)
	if err != nil {
		if fieldErrs, ok := catalogErrors(err, "Product"); ok {
			p.renderForm(c, http.StatusOK, nil, f, fieldErrs)
			return
		}
		log.Error("Failed to create product from admin", err)
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Product added from admin", map[string]interface{}{
		"product_id": product.ID,
		"site":       p.site.Prefix,
	})
	done(c, http.StatusCreated, p.site.url(ModelProducts), product)
}

// changeForm shows a product, editable unless the site is read-only
// GET /<site>/products/:id/
func (p *productAdmin) changeForm(c *gin.Context) {
	product, ok := p.load(c)
	if !ok {
		return
	}
	p.renderForm(c, http.StatusOK, product, productFormFrom(product), forms.Errors{})
}

// change updates a product. Name and slug are ignored for non-superusers.
// POST /<site>/products/:id/
func (p *productAdmin) change(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	product, ok := p.load(c)
	if !ok {
		return
	}

	superuser := isSuperuser(c)
	f, errs := bindProductForm(c)
	if !superuser {
		f.Name, f.Slug = product.Name, product.Slug
	} else if f.Slug == "" {
		f.Slug = util.Slugify(f.Name)
	}
	in := f.input(superuser, errs)
	if len(errs) > 0 {
		p.renderForm(c, http.StatusOK, product, f, errs)
		return
	}

	updated, err := p.svc.Products.Update(product.ID, in)
	if err != nil {
		if fieldErrs, ok := catalogErrors(err, "Product"); ok {
			p.renderForm(c, http.StatusOK, product, f, fieldErrs)
			return
		}
		log.Error("Failed to update product from admin", err, map[string]interface{}{
			"product_id": product.ID,
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Product changed from admin", map[string]interface{}{
		"product_id": updated.ID,
		"site":       p.site.Prefix,
	})
	done(c, http.StatusOK, p.site.url(ModelProducts), updated)
}

// confirmDelete asks before deleting a product
// GET /<site>/products/:id/delete/
func (p *productAdmin) confirmDelete(c *gin.Context) {
	product, ok := p.load(c)
	if !ok {
		return
	}
	url := p.site.objectURL(ModelProducts, product.ID)
	render(c, p.site, http.StatusOK, "admin/confirm_delete.html", gin.H{
		"model":       p.site.model(ModelProducts),
		"object_name": product.Name,
		"action":      url + "delete/",
		"cancel_url":  url,
	})
}

// delete removes a product
// POST /<site>/products/:id/delete/
func (p *productAdmin) delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := objectID(c)
	if !ok {
		notFound(c)
		return
	}
	if err := p.svc.Products.Delete(id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			notFound(c)
			return
		}
		log.Error("Failed to delete product from admin", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}
	done(c, http.StatusOK, p.site.url(ModelProducts), gin.H{"id": id, "deleted": true})
}

type inStockRequest struct {
	InStock *bool `json:"in_stock" form:"in_stock" binding:"required"`
}

// setInStock flips the in_stock flag from the change list
// PATCH /<site>/products/:id/in-stock
func (p *productAdmin) setInStock(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := objectID(c)
	if !ok {
		notFound(c)
		return
	}

	var req inStockRequest
	if err := c.ShouldBind(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "in_stock is required")
		return
	}

	if err := p.svc.Products.SetInStock(id, *req.InStock); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			notFound(c)
			return
		}
		log.Error("Failed to change stock flag", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}
	done(c, http.StatusOK, p.site.url(ModelProducts), gin.H{"id": id, "in_stock": *req.InStock})
}

func (p *productAdmin) load(c *gin.Context) (*model.Product, bool) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := objectID(c)
	if !ok {
		notFound(c)
		return nil, false
	}
	product, err := p.svc.Products.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			notFound(c)
			return nil, false
		}
		log.Error("Failed to load product for admin", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "")
		return nil, false
	}
	return product, true
}

func (p *productAdmin) renderForm(c *gin.Context, status int, product *model.Product, f productForm, errs forms.Errors) {
	tags, err := p.svc.Tags.List(repository.TagFilter{})
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list tags for product form", err)
		apperrors.InternalError(c, "")
		return
	}

	readOnly := p.site.ReadOnly
	identityLocked := readOnly || !isSuperuser(c)

	tagOptions := make([]Option, 0, len(tags))
	var tagNames []string
	for _, t := range tags {
		selected := containsID(f.TagIDs, t.ID)
		if selected {
			tagNames = append(tagNames, t.Name)
		}
		tagOptions = append(tagOptions, Option{Value: strconv.FormatUint(uint64(t.ID), 10), Label: t.Name, Selected: selected})
	}

	slug := Field{Name: "slug", Label: "Slug", Type: "text", Value: f.Slug, ReadOnly: identityLocked}
	if !identityLocked {
		slug.Prepopulate = "id_name"
	}
	fields := []Field{
		{Name: "name", Label: "Name", Type: "text", Value: f.Name, ReadOnly: identityLocked},
		slug,
		{Name: "description", Label: "Description", Type: "textarea", Value: f.Description, ReadOnly: readOnly},
		{Name: "price", Label: "Price", Type: "text", Value: f.Price, ReadOnly: readOnly},
		checkbox("active", "Active", f.Active, readOnly),
		checkbox("in_stock", "In stock", f.InStock, readOnly),
		{Name: "tags", Label: "Tags", Type: "select-multiple", Value: strings.Join(tagNames, ", "), Options: tagOptions, ReadOnly: readOnly},
	}

	data := gin.H{
		"model":   p.site.model(ModelProducts),
		"fields":  fields,
		"errors":  errs,
		"heading": "Add product",
		"action":  p.site.url(ModelProducts, "add"),
	}
	if product != nil {
		url := p.site.objectURL(ModelProducts, product.ID)
		data["heading"] = changeHeading(p.site, "product")
		data["action"] = url
		data["object"] = product
		if !readOnly {
			data["delete_url"] = url + "delete/"
		}
	}
	render(c, p.site, status, "admin/form.html", data)
}

func changeHeading(site *Site, singular string) string {
	if site.ReadOnly {
		return "View " + singular
	}
	return "Change " + singular
}

// updatedSinceFilter mirrors a date hierarchy filter on date_updated.
func updatedSinceFilter(c *gin.Context, now time.Time) (Filter, *time.Time) {
	value := c.Query("updated_since")
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	choices := []struct {
		value, label string
		since        time.Time
	}{
		{"today", "Today", today},
		{"past_7_days", "Past 7 days", today.AddDate(0, 0, -7)},
		{"this_month", "This month", time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())},
		{"this_year", "This year", time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())},
	}

	f := Filter{Name: "updated_since", Label: "By date updated", Options: []Option{{Value: "", Label: "Any date", Selected: value == ""}}}
	var since *time.Time
	for _, ch := range choices {
		selected := ch.value == value
		if selected {
			t := ch.since
			since = &t
		}
		f.Options = append(f.Options, Option{Value: ch.value, Label: ch.label, Selected: selected})
	}
	return f, since
}

// catalogErrors maps product and tag validation failures onto form fields.
func catalogErrors(err error, verbose string) (forms.Errors, bool) {
	errs := forms.Errors{}
	switch {
	case errors.Is(err, service.ErrInvalidName):
		errs.Add("name", "Ensure this value has at most 32 characters.")
	case errors.Is(err, service.ErrInvalidSlug):
		errs.Add("slug", "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	case errors.Is(err, service.ErrSlugTaken):
		errs.Add("slug", fmt.Sprintf("%s with this Slug already exists.", verbose))
	case errors.Is(err, service.ErrInvalidPrice):
		errs.Add("price", "Ensure this value is between 0 and 9999.99 with at most 2 decimal places.")
	case errors.Is(err, service.ErrTagNotFound):
		errs.Add("tags", "Select a valid choice.")
	default:
		return nil, false
	}
	return errs, true
}

func postedIDs(c *gin.Context, name string) ([]uint, bool) {
	ids := []uint{}
	for _, raw := range c.PostFormArray(name) {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return ids, false
		}
		ids = append(ids, uint(id))
	}
	return ids, true
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
