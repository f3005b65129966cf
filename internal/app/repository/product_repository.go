package repository

import (
	"strings"
	"time"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/pkg/logger"
	"gorm.io/gorm"
)

// TagAll selects every active product in the storefront listing.
const TagAll = "all"

type ProductFilter struct {
	Search       string
	Active       *bool
	InStock      *bool
	UpdatedSince *time.Time
	Limit        int
	Offset       int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	FindActive() ([]model.Product, error)
	FindActiveByTag(tagSlug string) ([]model.Product, error)
	List(filter ProductFilter) ([]model.Product, int64, error)
	Update(product *model.Product) error
	UpdateInStock(id uint, inStock bool) error
	AppendTags(product *model.Product, tags []model.ProductTag) error
	ReplaceTags(product *model.Product, tags []model.ProductTag) error
	Delete(id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name": product.Name,
		"slug": product.Slug,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"slug": product.Slug,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	err := r.db.Preload("Tags").Preload("Images").First(&product, id).Error
	if err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	logger.Debug("Product found by ID in database", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return &product, nil
}

func (r *productRepository) FindBySlug(slug string) (*model.Product, error) {
	logger.Debug("Finding product by slug in database", map[string]interface{}{
		"slug": slug,
	})

	var product model.Product
	err := r.db.Preload("Tags").Preload("Images").Where("slug = ?", slug).First(&product).Error
	if err != nil {
		logger.Debug("Product not found by slug in database", map[string]interface{}{
			"slug":  slug,
			"error": err.Error(),
		})
		return nil, err
	}

	logger.Debug("Product found by slug in database", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return &product, nil
}

// FindActive returns active products ordered by name.
func (r *productRepository) FindActive() ([]model.Product, error) {
	logger.Debug("Finding active products in database")

	var products []model.Product
	err := r.db.Preload("Tags").Preload("Images").
		Where("active = ?", true).
		Order("name").Order("id").
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find active products in database", err)
		return nil, err
	}

	logger.Debug("Active products found in database", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

// FindActiveByTag returns active products carrying the tag, ordered by name.
func (r *productRepository) FindActiveByTag(tagSlug string) ([]model.Product, error) {
	logger.Debug("Finding active products by tag in database", map[string]interface{}{
		"tag": tagSlug,
	})

	var products []model.Product
	err := r.db.Preload("Tags").Preload("Images").
		Joins("JOIN products_tags ON products_tags.product_id = products.id").
		Joins("JOIN product_tags ON product_tags.id = products_tags.product_tag_id").
		Where("products.active = ? AND product_tags.slug = ?", true, tagSlug).
		Order("products.name").Order("products.id").
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find active products by tag in database", err, map[string]interface{}{
			"tag": tagSlug,
		})
		return nil, err
	}

	logger.Debug("Active products found by tag in database", map[string]interface{}{
		"tag":   tagSlug,
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) List(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Listing products in database", map[string]interface{}{
		"search": filter.Search,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})

	query := r.db.Model(&model.Product{})
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.InStock != nil {
		query = query.Where("in_stock = ?", *filter.InStock)
	}
	if filter.UpdatedSince != nil {
		query = query.Where("date_updated >= ?", *filter.UpdatedSince)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count products in database", err)
		return nil, 0, err
	}

	query = query.Order("name").Order("id")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Preload("Tags").Find(&products).Error; err != nil {
		logger.Error("Failed to list products in database", err)
		return nil, 0, err
	}

	logger.Debug("Products listed from database", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

// Update saves scalar fields; tags and images are managed separately.
func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	if err := r.db.Omit("Tags", "Images").Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	logger.Debug("Product updated in database", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

func (r *productRepository) UpdateInStock(id uint, inStock bool) error {
	logger.Debug("Updating product stock flag in database", map[string]interface{}{
		"product_id": id,
		"in_stock":   inStock,
	})

	result := r.db.Model(&model.Product{}).Where("id = ?", id).Update("in_stock", inStock)
	if result.Error != nil {
		logger.Error("Failed to update product stock flag in database", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) AppendTags(product *model.Product, tags []model.ProductTag) error {
	if len(tags) == 0 {
		return nil
	}
	if err := r.db.Model(product).Omit("Tags.*").Association("Tags").Append(tags); err != nil {
		logger.Error("Failed to append product tags in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) ReplaceTags(product *model.Product, tags []model.ProductTag) error {
	if err := r.db.Model(product).Omit("Tags.*").Association("Tags").Replace(tags); err != nil {
		logger.Error("Failed to replace product tags in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

// Delete removes the product with its images and tag links.
func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.BasketLine{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Product{ID: id}).Association("Tags").Clear(); err != nil {
			return err
		}
		result := tx.Delete(&model.Product{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	logger.Debug("Product deleted from database", map[string]interface{}{
		"product_id": id,
	})
	return nil
}
