package controller

import (
	"errors"
	"net/http"

	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/internal/app/service"
	apperrors "github.com/booktime/booktime/internal/errors"
	"github.com/booktime/booktime/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// List shows active products, all of them or those carrying a tag
// GET /products/:tag/
func (ctrl *ProductController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	tagSlug := c.Param("tag")

	products, tag, err := ctrl.productService.ListActive(tagSlug)
	if err != nil {
		if errors.Is(err, service.ErrTagNotFound) {
			log.Warn("Product list requested for unknown tag", map[string]interface{}{
				"tag": tagSlug,
			})
			notFound(c)
			return
		}
		log.Error("Failed to list products", err, map[string]interface{}{
			"tag": tagSlug,
		})
		renderError(c, http.StatusInternalServerError, "A server error occurred.")
		return
	}

	render(c, http.StatusOK, "product_list.html", gin.H{
		"object_list": products,
		"tag":         tag,
	})
}

// Detail shows one active product
// GET /product/:slug/
func (ctrl *ProductController) Detail(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	product, err := ctrl.productService.GetActiveBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			notFound(c)
			return
		}
		log.Error("Failed to get product", err, map[string]interface{}{
			"slug": c.Param("slug"),
		})
		renderError(c, http.StatusInternalServerError, "A server error occurred.")
		return
	}

	render(c, http.StatusOK, "product_detail.html", gin.H{
		"object": product,
	})
}

// APIList returns active products for API clients, optionally filtered by tag slug
// GET /api/v1/products?tag=<slug>&search=<q>
func (ctrl *ProductController) APIList(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if tagSlug := c.Query("tag"); tagSlug != "" {
		products, _, err := ctrl.productService.ListActive(tagSlug)
		if err != nil {
			if errors.Is(err, service.ErrTagNotFound) {
				apperrors.NotFound(c, apperrors.TagNotFound, "Tag not found")
				return
			}
			log.Error("Failed to list products by tag", err)
			apperrors.InternalError(c, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
		return
	}

	active := true
	products, total, err := ctrl.productService.List(repository.ProductFilter{
		Search: c.Query("search"),
		Active: &active,
	})
	if err != nil {
		log.Error("Failed to list products", err)
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": total})
}
