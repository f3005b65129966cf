package admin

import (
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/booktime/booktime/internal/app/forms"
	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/internal/app/service"
	apperrors "github.com/booktime/booktime/internal/errors"
	"github.com/booktime/booktime/internal/middleware"
	"github.com/booktime/booktime/internal/storage"
	"github.com/gin-gonic/gin"
)

type imageAdmin struct {
	svc  Services
	site *Site
}

// list shows thumbnails with their product, searched by product name
// GET /<site>/images/?q=
func (i *imageAdmin) list(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	search := strings.TrimSpace(c.Query("q"))

	images, err := i.svc.Images.List(search)
	if err != nil {
		log.Error("Failed to list product images for admin", err)
		apperrors.InternalError(c, "")
		return
	}

	rows := make([]Row, 0, len(images))
	for _, img := range images {
		rows = append(rows, Row{
			ID: img.ID,
			Cells: []interface{}{
				template.HTML(img.ThumbnailTag(i.svc.Images.URL)),
				img.ProductName(),
			},
			URL: i.site.objectURL(ModelImages, img.ID),
		})
	}

	render(c, i.site, http.StatusOK, "admin/list.html", gin.H{
		"model":      i.site.model(ModelImages),
		"can_add":    !i.site.ReadOnly,
		"add_url":    i.site.url(ModelImages, "add"),
		"searchable": true,
		"search":     search,
		"columns":    []string{"Thumbnail", "Product"},
		"rows":       rows,
		"count":      len(images),
	})
}

// GET /<site>/images/add/
func (i *imageAdmin) addForm(c *gin.Context) {
	i.renderUpload(c, 0, forms.Errors{})
}

// add uploads an image for a product; the thumbnail is generated
// POST /<site>/images/add/ (multipart: product, image)
func (i *imageAdmin) add(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	errs := forms.Errors{}

	productID, err := strconv.ParseUint(c.PostForm("product"), 10, 32)
	if err != nil {
		errs.Add("product", "This field is required.")
	}

	file, err := c.FormFile("image")
	if err != nil {
		errs.Add("image", "This field is required.")
	} else if file.Size > storage.MaxImageSize {
		errs.Add("image", "The file is too large.")
	}
	if len(errs) > 0 {
		i.renderUpload(c, uint(productID), errs)
		return
	}

	src, err := file.Open()
	if err != nil {
		log.Error("Failed to open uploaded image", err)
		apperrors.InternalError(c, "")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error("Failed to read uploaded image", err)
		apperrors.InternalError(c, "")
		return
	}

	image, err := i.svc.Images.Attach(c.Request.Context(), uint(productID), file.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			errs.Add("product", "Select a valid choice.")
		case errors.Is(err, service.ErrUnsupportedImage):
			errs.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		case errors.Is(err, service.ErrImageTooLarge):
			errs.Add("image", "The file is too large.")
		case errors.Is(err, service.ErrImageAlreadyExists):
			errs.Add("image", "This image is already attached to the product.")
		default:
			log.Error("Failed to attach image from admin", err, map[string]interface{}{
				"product_id": productID,
			})
			apperrors.InternalError(c, "")
			return
		}
		i.renderUpload(c, uint(productID), errs)
		return
	}

	log.Info("Product image uploaded from admin", map[string]interface{}{
		"image_id":   image.ID,
		"product_id": image.ProductID,
	})
	done(c, http.StatusCreated, i.site.url(ModelImages), image)
}

// detail shows an image; the stored files are not editable
// GET /<site>/images/:id/
func (i *imageAdmin) detail(c *gin.Context) {
	image, ok := i.load(c)
	if !ok {
		return
	}

	url := i.site.objectURL(ModelImages, image.ID)
	data := gin.H{
		"model":   i.site.model(ModelImages),
		"heading": "View product image",
		"action":  url,
		"object":  image,
		"errors":  forms.Errors{},
		"fields": []Field{
			{Name: "product", Label: "Product", Value: image.ProductName(), ReadOnly: true},
			{Name: "image", Label: "Image", Value: image.Image, ReadOnly: true},
			{Name: "thumbnail", Label: "Thumbnail", ReadOnly: true, HTML: template.HTML(image.ThumbnailTag(i.svc.Images.URL))},
		},
	}
	if !i.site.ReadOnly {
		data["delete_url"] = url + "delete/"
	}
	data["read_only"] = true
	render(c, i.site, http.StatusOK, "admin/form.html", data)
}

// GET /<site>/images/:id/delete/
func (i *imageAdmin) confirmDelete(c *gin.Context) {
	image, ok := i.load(c)
	if !ok {
		return
	}
	url := i.site.objectURL(ModelImages, image.ID)
	render(c, i.site, http.StatusOK, "admin/confirm_delete.html", gin.H{
		"model":       i.site.model(ModelImages),
		"object_name": image.OriginalName,
		"action":      url + "delete/",
		"cancel_url":  url,
	})
}

// delete removes the record and its stored files
// POST /<site>/images/:id/delete/
func (i *imageAdmin) delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := objectID(c)
	if !ok {
		notFound(c)
		return
	}
	if err := i.svc.Images.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrImageNotFound) {
			notFound(c)
			return
		}
		log.Error("Failed to delete product image from admin", err, map[string]interface{}{
			"image_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}
	done(c, http.StatusOK, i.site.url(ModelImages), gin.H{"id": id, "deleted": true})
}

func (i *imageAdmin) load(c *gin.Context) (*model.ProductImage, bool) {
	id, ok := objectID(c)
	if !ok {
		notFound(c)
		return nil, false
	}
	image, err := i.svc.Images.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrImageNotFound) {
			notFound(c)
			return nil, false
		}
		middleware.GetLoggerFromContext(c).Error("Failed to load product image for admin", err, map[string]interface{}{
			"image_id": id,
		})
		apperrors.InternalError(c, "")
		return nil, false
	}
	return image, true
}

func (i *imageAdmin) renderUpload(c *gin.Context, productID uint, errs forms.Errors) {
	products, _, err := i.svc.Products.List(repository.ProductFilter{})
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list products for image form", err)
		apperrors.InternalError(c, "")
		return
	}

	options := []Option{{Value: "", Label: "---------", Selected: productID == 0}}
	for _, p := range products {
		options = append(options, Option{
			Value:    strconv.FormatUint(uint64(p.ID), 10),
			Label:    p.Name,
			Selected: p.ID == productID,
		})
	}

	render(c, i.site, http.StatusOK, "admin/form.html", gin.H{
		"model":     i.site.model(ModelImages),
		"heading":   "Add product image",
		"action":    i.site.url(ModelImages, "add"),
		"multipart": true,
		"errors":    errs,
		"fields": []Field{
			{Name: "product", Label: "Product", Type: "select", Options: options},
			{Name: "image", Label: "Image", Type: "file"},
		},
	})
}
