package repository

import (
	"strings"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/pkg/logger"
	"gorm.io/gorm"
)

type TagFilter struct {
	Search string
	Active *bool
}

type ProductTagRepository interface {
	Create(tag *model.ProductTag) error
	FindByID(id uint) (*model.ProductTag, error)
	FindBySlug(slug string) (*model.ProductTag, error)
	FindByIDs(ids []uint) ([]model.ProductTag, error)
	List(filter TagFilter) ([]model.ProductTag, error)
	Update(tag *model.ProductTag) error
	Delete(id uint) error
}

type productTagRepository struct {
	db *gorm.DB
}

func NewProductTagRepository(db *gorm.DB) ProductTagRepository {
	return &productTagRepository{db: db}
}

func (r *productTagRepository) Create(tag *model.ProductTag) error {
	logger.Debug("Creating product tag in database", map[string]interface{}{
		"name": tag.Name,
		"slug": tag.Slug,
	})

	if err := r.db.Create(tag).Error; err != nil {
		logger.Error("Failed to create product tag in database", err, map[string]interface{}{
			"slug": tag.Slug,
		})
		return err
	}

	logger.Debug("Product tag created in database", map[string]interface{}{
		"tag_id": tag.ID,
		"slug":   tag.Slug,
	})
	return nil
}

func (r *productTagRepository) FindByID(id uint) (*model.ProductTag, error) {
	var tag model.ProductTag
	if err := r.db.First(&tag, id).Error; err != nil {
		logger.Error("Failed to find product tag by ID in database", err, map[string]interface{}{
			"tag_id": id,
		})
		return nil, err
	}
	return &tag, nil
}

func (r *productTagRepository) FindBySlug(slug string) (*model.ProductTag, error) {
	logger.Debug("Finding product tag by slug in database", map[string]interface{}{
		"slug": slug,
	})

	var tag model.ProductTag
	if err := r.db.Where("slug = ?", slug).First(&tag).Error; err != nil {
		logger.Debug("Product tag not found by slug in database", map[string]interface{}{
			"slug":  slug,
			"error": err.Error(),
		})
		return nil, err
	}
	return &tag, nil
}

func (r *productTagRepository) FindByIDs(ids []uint) ([]model.ProductTag, error) {
	if len(ids) == 0 {
		return []model.ProductTag{}, nil
	}

	var tags []model.ProductTag
	if err := r.db.Where("id IN ?", ids).Order("name").Find(&tags).Error; err != nil {
		logger.Error("Failed to find product tags by IDs in database", err, map[string]interface{}{
			"tag_ids": ids,
		})
		return nil, err
	}
	return tags, nil
}

// List returns tags ordered by name.
func (r *productTagRepository) List(filter TagFilter) ([]model.ProductTag, error) {
	query := r.db.Model(&model.ProductTag{})
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	var tags []model.ProductTag
	if err := query.Order("name").Order("id").Find(&tags).Error; err != nil {
		logger.Error("Failed to list product tags in database", err)
		return nil, err
	}

	logger.Debug("Product tags listed from database", map[string]interface{}{
		"count": len(tags),
	})
	return tags, nil
}

func (r *productTagRepository) Update(tag *model.ProductTag) error {
	if err := r.db.Save(tag).Error; err != nil {
		logger.Error("Failed to update product tag in database", err, map[string]interface{}{
			"tag_id": tag.ID,
		})
		return err
	}

	logger.Debug("Product tag updated in database", map[string]interface{}{
		"tag_id": tag.ID,
	})
	return nil
}

func (r *productTagRepository) Delete(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM products_tags WHERE product_tag_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.ProductTag{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete product tag from database", err, map[string]interface{}{
			"tag_id": id,
		})
		return err
	}

	logger.Debug("Product tag deleted from database", map[string]interface{}{
		"tag_id": id,
	})
	return nil
}
