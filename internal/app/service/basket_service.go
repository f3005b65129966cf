package service

import (
	"errors"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrBasketNotFound     = errors.New("basket not found")
	ErrBasketLineNotFound = errors.New("basket line not found")
	ErrInvalidQuantity    = errors.New("quantity must be zero or more")
)

type BasketService interface {
	AddProduct(basketID, userID *uint, productID uint) (*model.Basket, error)
	GetBasket(basketID uint) (*model.Basket, error)
	GetOpenBasket(userID uint) (*model.Basket, error)
	UpdateQuantities(basketID uint, quantities map[uint]int) (*model.Basket, error)
	MergeIntoUser(anonBasketID *uint, userID uint) (*model.Basket, error)
}

type basketService struct {
	basketRepo  repository.BasketRepository
	productRepo repository.ProductRepository
}

func NewBasketService(basketRepo repository.BasketRepository, productRepo repository.ProductRepository) BasketService {
	return &basketService{
		basketRepo:  basketRepo,
		productRepo: productRepo,
	}
}

// AddProduct adds one unit of the product to the basket, creating the basket
// when basketID is nil or no longer usable. Repeated adds increment the line.
func (s *basketService) AddProduct(basketID, userID *uint, productID uint) (*model.Basket, error) {
	logger.Info("Adding product to basket", map[string]interface{}{
		"basket_id":  basketID,
		"user_id":    userID,
		"product_id": productID,
	})

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to basket: product not found", map[string]interface{}{
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	basket, err := s.usableBasket(basketID, userID)
	if err != nil {
		return nil, err
	}

	line, err := s.basketRepo.FindLine(basket.ID, productID)
	switch {
	case err == nil:
		if err := s.basketRepo.UpdateLineQuantity(line.ID, line.Quantity+1); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		line = &model.BasketLine{BasketID: basket.ID, ProductID: productID, Quantity: 1}
		if err := s.basketRepo.CreateLine(line); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.GetBasket(basket.ID)
}

// usableBasket returns the referenced open basket, the user's open basket, or a new one.
func (s *basketService) usableBasket(basketID, userID *uint) (*model.Basket, error) {
	if basketID != nil {
		basket, err := s.basketRepo.FindByID(*basketID)
		switch {
		case err == nil:
			owned := basket.UserID == nil || (userID != nil && *basket.UserID == *userID)
			if basket.Status == model.BasketOpen && owned {
				return basket, nil
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	if userID != nil {
		basket, err := s.basketRepo.FindOpenByUserID(*userID)
		if err == nil {
			return basket, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	basket := &model.Basket{UserID: userID, Status: model.BasketOpen}
	if err := s.basketRepo.Create(basket); err != nil {
		return nil, err
	}
	logger.Info("Basket created", map[string]interface{}{
		"basket_id": basket.ID,
		"user_id":   userID,
	})
	return basket, nil
}

func (s *basketService) GetBasket(basketID uint) (*model.Basket, error) {
	basket, err := s.basketRepo.FindByID(basketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBasketNotFound
		}
		return nil, err
	}
	return basket, nil
}

func (s *basketService) GetOpenBasket(userID uint) (*model.Basket, error) {
	basket, err := s.basketRepo.FindOpenByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBasketNotFound
		}
		return nil, err
	}
	return s.GetBasket(basket.ID)
}

// UpdateQuantities sets line quantities by line id; zero removes the line.
func (s *basketService) UpdateQuantities(basketID uint, quantities map[uint]int) (*model.Basket, error) {
	basket, err := s.GetBasket(basketID)
	if err != nil {
		return nil, err
	}

	for _, qty := range quantities {
		if qty < 0 {
			return nil, ErrInvalidQuantity
		}
	}

	lines := make(map[uint]model.BasketLine, len(basket.Lines))
	for _, l := range basket.Lines {
		lines[l.ID] = l
	}

	for lineID, qty := range quantities {
		line, ok := lines[lineID]
		if !ok {
			return nil, ErrBasketLineNotFound
		}
		if qty == line.Quantity {
			continue
		}
		if qty == 0 {
			err = s.basketRepo.DeleteLine(basketID, lineID)
		} else {
			err = s.basketRepo.UpdateLineQuantity(lineID, qty)
		}
		if err != nil {
			return nil, err
		}
	}

	logger.Info("Basket quantities updated", map[string]interface{}{
		"basket_id": basketID,
		"lines":     len(quantities),
	})
	return s.GetBasket(basketID)
}

// MergeIntoUser folds an anonymous basket into the user's open basket, or
// hands it to the user when they have none. Returns the user's open basket, if any.
func (s *basketService) MergeIntoUser(anonBasketID *uint, userID uint) (*model.Basket, error) {
	var anon *model.Basket
	if anonBasketID != nil {
		basket, err := s.basketRepo.FindByID(*anonBasketID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil && basket.UserID == nil && basket.Status == model.BasketOpen {
			anon = basket
		}
	}

	existing, err := s.basketRepo.FindOpenByUserID(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hasExisting := err == nil

	switch {
	case anon == nil && !hasExisting:
		return nil, nil
	case anon == nil:
		return s.GetBasket(existing.ID)
	case !hasExisting:
		if err := s.basketRepo.AssignUser(anon.ID, userID); err != nil {
			return nil, err
		}
		logger.Info("Anonymous basket assigned to user", map[string]interface{}{
			"basket_id": anon.ID,
			"user_id":   userID,
		})
		return s.GetBasket(anon.ID)
	}

	if err := s.basketRepo.Merge(anon.ID, existing.ID); err != nil {
		return nil, err
	}
	logger.Info("Anonymous basket merged into user basket", map[string]interface{}{
		"src_basket_id": anon.ID,
		"dst_basket_id": existing.ID,
		"user_id":       userID,
	})
	return s.GetBasket(existing.ID)
}
