package repository

import (
	"errors"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/pkg/logger"
	"gorm.io/gorm"
)

type BasketRepository interface {
	Create(basket *model.Basket) error
	FindByID(id uint) (*model.Basket, error)
	FindOpenByUserID(userID uint) (*model.Basket, error)
	AssignUser(basketID, userID uint) error
	FindLine(basketID, productID uint) (*model.BasketLine, error)
	CreateLine(line *model.BasketLine) error
	UpdateLineQuantity(lineID uint, quantity int) error
	DeleteLine(basketID, lineID uint) error
	Merge(srcID, dstID uint) error
}

type basketRepository struct {
	db *gorm.DB
}

func NewBasketRepository(db *gorm.DB) BasketRepository {
	return &basketRepository{db: db}
}

func (r *basketRepository) Create(basket *model.Basket) error {
	logger.Debug("Creating basket in database", map[string]interface{}{
		"user_id": basket.UserID,
	})

	if err := r.db.Omit("Lines").Create(basket).Error; err != nil {
		logger.Error("Failed to create basket in database", err)
		return err
	}

	logger.Debug("Basket created in database", map[string]interface{}{
		"basket_id": basket.ID,
	})
	return nil
}

// FindByID loads the basket with its lines and their products.
func (r *basketRepository) FindByID(id uint) (*model.Basket, error) {
	logger.Debug("Finding basket by ID in database", map[string]interface{}{
		"basket_id": id,
	})

	var basket model.Basket
	err := r.db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("basket_lines.id")
	}).Preload("Lines.Product").First(&basket, id).Error
	if err != nil {
		logger.Debug("Basket not found by ID in database", map[string]interface{}{
			"basket_id": id,
			"error":     err.Error(),
		})
		return nil, err
	}
	return &basket, nil
}

func (r *basketRepository) FindOpenByUserID(userID uint) (*model.Basket, error) {
	var basket model.Basket
	err := r.db.Where("user_id = ? AND status = ?", userID, model.BasketOpen).
		Order("id DESC").
		First(&basket).Error
	if err != nil {
		return nil, err
	}
	return &basket, nil
}

func (r *basketRepository) AssignUser(basketID, userID uint) error {
	err := r.db.Model(&model.Basket{}).Where("id = ?", basketID).Update("user_id", userID).Error
	if err != nil {
		logger.Error("Failed to assign basket to user in database", err, map[string]interface{}{
			"basket_id": basketID,
			"user_id":   userID,
		})
	}
	return err
}

func (r *basketRepository) FindLine(basketID, productID uint) (*model.BasketLine, error) {
	var line model.BasketLine
	err := r.db.Where("basket_id = ? AND product_id = ?", basketID, productID).First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *basketRepository) CreateLine(line *model.BasketLine) error {
	logger.Debug("Creating basket line in database", map[string]interface{}{
		"basket_id":  line.BasketID,
		"product_id": line.ProductID,
		"quantity":   line.Quantity,
	})

	if err := r.db.Omit("Product").Create(line).Error; err != nil {
		logger.Error("Failed to create basket line in database", err, map[string]interface{}{
			"basket_id":  line.BasketID,
			"product_id": line.ProductID,
		})
		return err
	}
	return nil
}

func (r *basketRepository) UpdateLineQuantity(lineID uint, quantity int) error {
	logger.Debug("Updating basket line quantity in database", map[string]interface{}{
		"line_id":  lineID,
		"quantity": quantity,
	})

	result := r.db.Model(&model.BasketLine{}).Where("id = ?", lineID).Update("quantity", quantity)
	if result.Error != nil {
		logger.Error("Failed to update basket line in database", result.Error, map[string]interface{}{
			"line_id": lineID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *basketRepository) DeleteLine(basketID, lineID uint) error {
	result := r.db.Where("id = ? AND basket_id = ?", lineID, basketID).Delete(&model.BasketLine{})
	if result.Error != nil {
		logger.Error("Failed to delete basket line from database", result.Error, map[string]interface{}{
			"basket_id": basketID,
			"line_id":   lineID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Merge moves every line of src into dst, summing quantities per product, then deletes src.
func (r *basketRepository) Merge(srcID, dstID uint) error {
	logger.Debug("Merging baskets in database", map[string]interface{}{
		"src_basket_id": srcID,
		"dst_basket_id": dstID,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var lines []model.BasketLine
		if err := tx.Where("basket_id = ?", srcID).Find(&lines).Error; err != nil {
			return err
		}

		for _, line := range lines {
			var existing model.BasketLine
			err := tx.Where("basket_id = ? AND product_id = ?", dstID, line.ProductID).First(&existing).Error
			switch {
			case err == nil:
				if err := tx.Model(&existing).Update("quantity", existing.Quantity+line.Quantity).Error; err != nil {
					return err
				}
				if err := tx.Delete(&model.BasketLine{}, line.ID).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Model(&model.BasketLine{}).Where("id = ?", line.ID).Update("basket_id", dstID).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}

		return tx.Delete(&model.Basket{}, srcID).Error
	})
	if err != nil {
		logger.Error("Failed to merge baskets in database", err, map[string]interface{}{
			"src_basket_id": srcID,
			"dst_basket_id": dstID,
		})
		return err
	}
	return nil
}
