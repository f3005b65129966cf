package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/booktime/booktime/internal/app/forms"
	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/internal/app/service"
	apperrors "github.com/booktime/booktime/internal/errors"
	"github.com/booktime/booktime/internal/middleware"
	"github.com/booktime/booktime/pkg/util"
	"github.com/gin-gonic/gin"
)

type tagAdmin struct {
	svc  Services
	site *Site
}

type tagForm struct {
	Name        string
	Slug        string
	Description string
	Active      bool
}

func bindTagForm(c *gin.Context) tagForm {
	return tagForm{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Slug:        strings.TrimSpace(c.PostForm("slug")),
		Description: c.PostForm("description"),
		Active:      postedBool(c, "active"),
	}
}

func (f tagForm) input(identity bool, errs forms.Errors) service.TagInput {
	in := service.TagInput{Description: &f.Description, Active: &f.Active}
	if identity {
		in.Name = &f.Name
		in.Slug = &f.Slug
		if f.Name == "" {
			errs.Add("name", "This field is required.")
		}
	}
	return in
}

// list shows tags filtered by active and searched by name
// GET /<site>/tags/?q=&active=
func (t *tagAdmin) list(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	activeFilter, active := boolFilter(c, "active", "By active")
	search := strings.TrimSpace(c.Query("q"))

	tags, err := t.svc.Tags.List(repository.TagFilter{Search: search, Active: active})
	if err != nil {
		log.Error("Failed to list tags for admin", err)
		apperrors.InternalError(c, "")
		return
	}

	rows := make([]Row, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, Row{
			ID:    tag.ID,
			Cells: []interface{}{tag.Name, tag.Slug},
			URL:   t.site.objectURL(ModelTags, tag.ID),
		})
	}

	render(c, t.site, http.StatusOK, "admin/list.html", gin.H{
		"model":      t.site.model(ModelTags),
		"can_add":    !t.site.ReadOnly && isSuperuser(c),
		"add_url":    t.site.url(ModelTags, "add"),
		"searchable": true,
		"search":     search,
		"filters":    []Filter{activeFilter},
		"columns":    []string{"Name", "Slug"},
		"rows":       rows,
		"count":      len(tags),
	})
}

// GET /<site>/tags/add/
func (t *tagAdmin) addForm(c *gin.Context) {
	t.renderForm(c, nil, tagForm{Active: true}, forms.Errors{})
}

// POST /<site>/tags/add/
func (t *tagAdmin) add(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	f := bindTagForm(c)
	errs := forms.Errors{}
	in := f.input(true, errs)
	if len(errs) > 0 {
		t.renderForm(c, nil, f, errs)
		return
	}

	tag, err := t.svc.Tags.Create(in)
	if err != nil {
		if fieldErrs, ok := catalogErrors(err, "Product tag"); ok {
			t.renderForm(c, nil, f, fieldErrs)
			return
		}
		log.Error("Failed to create tag from admin", err)
		apperrors.InternalError(c, "")
		return
	}
	done(c, http.StatusCreated, t.site.url(ModelTags), tag)
}

// GET /<site>/tags/:id/
func (t *tagAdmin) changeForm(c *gin.Context) {
	tag, ok := t.load(c)
	if !ok {
		return
	}
	t.renderForm(c, tag, tagForm{Name: tag.Name, Slug: tag.Slug, Description: tag.Description, Active: tag.Active}, forms.Errors{})
}

// change updates a tag. Name and slug are ignored for non-superusers.
// POST /<site>/tags/:id/
func (t *tagAdmin) change(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	tag, ok := t.load(c)
	if !ok {
		return
	}

	superuser := isSuperuser(c)
	f := bindTagForm(c)
	if !superuser {
		f.Name, f.Slug = tag.Name, tag.Slug
	} else if f.Slug == "" {
		f.Slug = util.Slugify(f.Name)
	}
	errs := forms.Errors{}
	in := f.input(superuser, errs)
	if len(errs) > 0 {
		t.renderForm(c, tag, f, errs)
		return
	}

	updated, err := t.svc.Tags.Update(tag.ID, in)
	if err != nil {
		if fieldErrs, ok := catalogErrors(err, "Product tag"); ok {
			t.renderForm(c, tag, f, fieldErrs)
			return
		}
		log.Error("Failed to update tag from admin", err, map[string]interface{}{
			"tag_id": tag.ID,
		})
		apperrors.InternalError(c, "")
		return
	}
	done(c, http.StatusOK, t.site.url(ModelTags), updated)
}

// GET /<site>/tags/:id/delete/
func (t *tagAdmin) confirmDelete(c *gin.Context) {
	tag, ok := t.load(c)
	if !ok {
		return
	}
	url := t.site.objectURL(ModelTags, tag.ID)
	render(c, t.site, http.StatusOK, "admin/confirm_delete.html", gin.H{
		"model":       t.site.model(ModelTags),
		"object_name": tag.Name,
		"action":      url + "delete/",
		"cancel_url":  url,
	})
}

// POST /<site>/tags/:id/delete/
func (t *tagAdmin) delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := objectID(c)
	if !ok {
		notFound(c)
		return
	}
	if err := t.svc.Tags.Delete(id); err != nil {
		if errors.Is(err, service.ErrTagNotFound) {
			notFound(c)
			return
		}
		log.Error("Failed to delete tag from admin", err, map[string]interface{}{
			"tag_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}
	done(c, http.StatusOK, t.site.url(ModelTags), gin.H{"id": id, "deleted": true})
}

func (t *tagAdmin) load(c *gin.Context) (*model.ProductTag, bool) {
	id, ok := objectID(c)
	if !ok {
		notFound(c)
		return nil, false
	}
	tag, err := t.svc.Tags.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrTagNotFound) {
			notFound(c)
			return nil, false
		}
		middleware.GetLoggerFromContext(c).Error("Failed to load tag for admin", err, map[string]interface{}{
			"tag_id": id,
		})
		apperrors.InternalError(c, "")
		return nil, false
	}
	return tag, true
}

func (t *tagAdmin) renderForm(c *gin.Context, tag *model.ProductTag, f tagForm, errs forms.Errors) {
	readOnly := t.site.ReadOnly
	identityLocked := readOnly || !isSuperuser(c)

	slug := Field{Name: "slug", Label: "Slug", Type: "text", Value: f.Slug, ReadOnly: identityLocked}
	if !identityLocked {
		slug.Prepopulate = "id_name"
	}

	data := gin.H{
		"model": t.site.model(ModelTags),
		"fields": []Field{
			{Name: "name", Label: "Name", Type: "text", Value: f.Name, ReadOnly: identityLocked},
			slug,
			{Name: "description", Label: "Description", Type: "textarea", Value: f.Description, ReadOnly: readOnly},
			checkbox("active", "Active", f.Active, readOnly),
		},
		"errors":  errs,
		"heading": "Add product tag",
		"action":  t.site.url(ModelTags, "add"),
	}
	if tag != nil {
		url := t.site.objectURL(ModelTags, tag.ID)
		data["heading"] = changeHeading(t.site, "product tag")
		data["action"] = url
		data["object"] = tag
		if !readOnly {
			data["delete_url"] = url + "delete/"
		}
	}
	render(c, t.site, http.StatusOK, "admin/form.html", data)
}
