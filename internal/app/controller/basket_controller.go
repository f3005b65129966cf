package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/booktime/booktime/internal/app/forms"
	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/service"
	apperrors "github.com/booktime/booktime/internal/errors"
	"github.com/booktime/booktime/internal/middleware"
	"github.com/gin-gonic/gin"
)

const quantityFieldPrefix = "quantity_"

type BasketController struct {
	basketService service.BasketService
}

func NewBasketController(basketService service.BasketService) *BasketController {
	return &BasketController{
		basketService: basketService,
	}
}

type AddToBasketRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// AddToBasket adds one unit of a product and returns to the product page
// GET /add_to_basket/?product_id=N
func (ctrl *BasketController) AddToBasket(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, err := strconv.ParseUint(c.Query("product_id"), 10, 64)
	if err != nil {
		log.Warn("Invalid product id for basket", map[string]interface{}{
			"product_id": c.Query("product_id"),
		})
		notFound(c)
		return
	}

	var userID *uint
	if user, ok := middleware.GetCurrentUser(c); ok {
		userID = &user.ID
	}

	basket, err := ctrl.basketService.AddProduct(middleware.SessionBasketID(c), userID, uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			notFound(c)
			return
		}
		log.Error("Failed to add product to basket", err, map[string]interface{}{
			"product_id": productID,
		})
		renderError(c, http.StatusInternalServerError, "A server error occurred.")
		return
	}

	if err := middleware.SetSessionBasketID(c, basket.ID); err != nil {
		log.Error("Failed to save basket in session", err)
	}

	target := "/basket/"
	if line := findLine(basket, uint(productID)); line != nil && line.Product.Slug != "" {
		target = fmt.Sprintf("/product/%s/", line.Product.Slug)
	}
	c.Redirect(http.StatusFound, target)
}

// View shows the session basket
// GET /basket/
func (ctrl *BasketController) View(c *gin.Context) {
	render(c, http.StatusOK, "basket.html", gin.H{
		"basket": ctrl.currentBasket(c),
		"errors": forms.Errors{},
	})
}

// Update sets line quantities from quantity_<line id> fields; 0 removes a line
// POST /basket/
func (ctrl *BasketController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	basket := ctrl.currentBasket(c)
	if basket == nil {
		c.Redirect(http.StatusFound, "/basket/")
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		log.Warn("Invalid basket form", map[string]interface{}{"error": err.Error()})
	}

	errs := forms.Errors{}
	quantities := make(map[uint]int)
	for key, values := range c.Request.PostForm {
		if !strings.HasPrefix(key, quantityFieldPrefix) || len(values) == 0 {
			continue
		}
		lineID, err := strconv.ParseUint(strings.TrimPrefix(key, quantityFieldPrefix), 10, 64)
		if err != nil {
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(values[0]))
		if err != nil || qty < 0 {
			errs.Add(forms.NonFieldErrors, "Quantities must be whole numbers of zero or more.")
			break
		}
		quantities[uint(lineID)] = qty
	}

	if len(errs) == 0 {
		_, err := ctrl.basketService.UpdateQuantities(basket.ID, quantities)
		switch {
		case err == nil:
			c.Redirect(http.StatusFound, "/basket/")
			return
		case errors.Is(err, service.ErrBasketLineNotFound):
			errs.Add(forms.NonFieldErrors, "The basket changed, please review it and try again.")
		default:
			log.Error("Failed to update basket", err, map[string]interface{}{
				"basket_id": basket.ID,
			})
			renderError(c, http.StatusInternalServerError, "A server error occurred.")
			return
		}
	}

	render(c, http.StatusOK, "basket.html", gin.H{
		"basket": basket,
		"errors": errs,
	})
}

// currentBasket returns the session basket, falling back to the user's open basket.
func (ctrl *BasketController) currentBasket(c *gin.Context) *model.Basket {
	if basket, ok := middleware.GetCurrentBasket(c); ok {
		return basket
	}
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return nil
	}
	basket, err := ctrl.basketService.GetOpenBasket(user.ID)
	if err != nil {
		return nil
	}
	if err := middleware.SetSessionBasketID(c, basket.ID); err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to save basket in session", err)
	}
	return basket
}

// APIGet returns the API user's open basket
// GET /api/v1/basket
func (ctrl *BasketController) APIGet(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	basket, err := ctrl.basketService.GetOpenBasket(userID)
	if err != nil {
		if errors.Is(err, service.ErrBasketNotFound) {
			c.JSON(http.StatusOK, gin.H{"basket": nil, "count": 0})
			return
		}
		log.Error("Failed to get basket", err, map[string]interface{}{"user_id": userID})
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"basket": basket, "count": basket.Count()})
}

// APIAdd adds one unit of a product to the API user's basket
// POST /api/v1/basket
func (ctrl *BasketController) APIAdd(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var req AddToBasketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to basket request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "product_id is required")
		return
	}

	basket, err := ctrl.basketService.AddProduct(nil, &userID, req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to add product to basket", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": req.ProductID,
		})
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"basket": basket, "count": basket.Count()})
}

func findLine(basket *model.Basket, productID uint) *model.BasketLine {
	for i := range basket.Lines {
		if basket.Lines[i].ProductID == productID {
			return &basket.Lines[i]
		}
	}
	return nil
}
