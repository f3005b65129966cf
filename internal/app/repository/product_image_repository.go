package repository

import (
	"strings"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/pkg/logger"
	"gorm.io/gorm"
)

type ProductImageRepository interface {
	Create(image *model.ProductImage) error
	FindByID(id uint) (*model.ProductImage, error)
	FindByProductID(productID uint) ([]model.ProductImage, error)
	ExistsByOriginalName(productID uint, originalName string) (bool, error)
	List(productSearch string) ([]model.ProductImage, error)
	Delete(id uint) error
}

type productImageRepository struct {
	db *gorm.DB
}

func NewProductImageRepository(db *gorm.DB) ProductImageRepository {
	return &productImageRepository{db: db}
}

func (r *productImageRepository) Create(image *model.ProductImage) error {
	logger.Debug("Creating product image in database", map[string]interface{}{
		"product_id": image.ProductID,
		"image":      image.Image,
	})

	if err := r.db.Omit("Product").Create(image).Error; err != nil {
		logger.Error("Failed to create product image in database", err, map[string]interface{}{
			"product_id": image.ProductID,
			"image":      image.Image,
		})
		return err
	}

	logger.Debug("Product image created in database", map[string]interface{}{
		"image_id":   image.ID,
		"product_id": image.ProductID,
	})
	return nil
}

func (r *productImageRepository) FindByID(id uint) (*model.ProductImage, error) {
	var image model.ProductImage
	if err := r.db.Preload("Product").First(&image, id).Error; err != nil {
		logger.Error("Failed to find product image by ID in database", err, map[string]interface{}{
			"image_id": id,
		})
		return nil, err
	}
	return &image, nil
}

func (r *productImageRepository) FindByProductID(productID uint) ([]model.ProductImage, error) {
	var images []model.ProductImage
	if err := r.db.Where("product_id = ?", productID).Order("id").Find(&images).Error; err != nil {
		logger.Error("Failed to find product images in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return images, nil
}

func (r *productImageRepository) ExistsByOriginalName(productID uint, originalName string) (bool, error) {
	var count int64
	err := r.db.Model(&model.ProductImage{}).
		Where("product_id = ? AND original_name = ?", productID, originalName).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check product image in database", err, map[string]interface{}{
			"product_id":    productID,
			"original_name": originalName,
		})
		return false, err
	}
	return count > 0, nil
}

// List returns images with their product, optionally filtered by product name.
func (r *productImageRepository) List(productSearch string) ([]model.ProductImage, error) {
	query := r.db.Model(&model.ProductImage{}).Preload("Product")
	if productSearch != "" {
		query = query.
			Joins("JOIN products ON products.id = product_images.product_id").
			Where("LOWER(products.name) LIKE ?", "%"+strings.ToLower(productSearch)+"%")
	}

	var images []model.ProductImage
	if err := query.Order("product_images.id").Find(&images).Error; err != nil {
		logger.Error("Failed to list product images in database", err, map[string]interface{}{
			"search": productSearch,
		})
		return nil, err
	}

	logger.Debug("Product images listed from database", map[string]interface{}{
		"count": len(images),
	})
	return images, nil
}

func (r *productImageRepository) Delete(id uint) error {
	result := r.db.Delete(&model.ProductImage{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product image from database", result.Error, map[string]interface{}{
			"image_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
