package middleware

import (
	"github.com/booktime/booktime/internal/app/model"
	"github.com/gin-gonic/gin"
)

const CurrentBasketKey = "current_basket"

// BasketLoader loads the basket referenced by the session.
type BasketLoader interface {
	GetBasket(basketID uint) (*model.Basket, error)
}

// SessionBasket exposes the session's open basket to handlers and templates.
// Must run after SessionAuth.
func SessionBasket(baskets BasketLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := SessionBasketID(c)
		if id == nil {
			c.Next()
			return
		}

		basket, err := baskets.GetBasket(*id)
		if err != nil || basket.Status != model.BasketOpen {
			GetLoggerFromContext(c).Debug("Session basket no longer usable", map[string]interface{}{
				"basket_id": *id,
			})
			c.Next()
			return
		}
		if basket.UserID != nil {
			if user, ok := GetCurrentUser(c); !ok || user.ID != *basket.UserID {
				c.Next()
				return
			}
		}

		c.Set(CurrentBasketKey, basket)
		c.Next()
	}
}

func GetCurrentBasket(c *gin.Context) (*model.Basket, bool) {
	v, exists := c.Get(CurrentBasketKey)
	if !exists {
		return nil, false
	}
	basket, ok := v.(*model.Basket)
	return basket, ok
}
