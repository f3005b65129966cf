package service

import (
	"errors"
	"strings"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/pkg/logger"
	"github.com/booktime/booktime/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrTagNotFound     = errors.New("tag not found")
	ErrSlugTaken       = errors.New("slug already in use")
	ErrInvalidSlug     = errors.New("invalid slug")
	ErrInvalidName     = errors.New("name is required and must be at most 32 characters")
	ErrInvalidPrice    = errors.New("price must be between 0 and 9999.99 with at most two decimals")
)

const maxNameLength = 32

var maxPrice = decimal.RequireFromString("9999.99")

// ProductInput carries product fields; nil fields are left unchanged on update.
type ProductInput struct {
	Name        *string
	Slug        *string
	Description *string
	Price       *decimal.Decimal
	Active      *bool
	InStock     *bool
	TagIDs      *[]uint
}

type ProductService interface {
	ListActive(tagSlug string) ([]model.Product, *model.ProductTag, error)
	GetActiveBySlug(slug string) (*model.Product, error)
	GetByID(id uint) (*model.Product, error)
	List(filter repository.ProductFilter) ([]model.Product, int64, error)
	Create(in ProductInput) (*model.Product, error)
	Update(id uint, in ProductInput) (*model.Product, error)
	SetInStock(id uint, inStock bool) error
	Delete(id uint) error
}

type productService struct {
	productRepo repository.ProductRepository
	tagRepo     repository.ProductTagRepository
}

func NewProductService(productRepo repository.ProductRepository, tagRepo repository.ProductTagRepository) ProductService {
	return &productService{
		productRepo: productRepo,
		tagRepo:     tagRepo,
	}
}

// ListActive returns active products ordered by name. tagSlug "all" lists every
// active product; any other value must name an existing tag.
func (s *productService) ListActive(tagSlug string) ([]model.Product, *model.ProductTag, error) {
	if tagSlug == "" || tagSlug == repository.TagAll {
		products, err := s.productRepo.FindActive()
		return products, nil, err
	}

	tag, err := s.tagRepo.FindBySlug(tagSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product listing requested for unknown tag", map[string]interface{}{
				"tag": tagSlug,
			})
			return nil, nil, ErrTagNotFound
		}
		return nil, nil, err
	}

	products, err := s.productRepo.FindActiveByTag(tag.Slug)
	if err != nil {
		return nil, nil, err
	}
	return products, tag, nil
}

func (s *productService) GetActiveBySlug(slug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.Active {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *productService) GetByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) List(filter repository.ProductFilter) ([]model.Product, int64, error) {
	return s.productRepo.List(filter)
}

// Create stores a new product. An empty slug is derived from the name; Active
// and InStock default to true.
func (s *productService) Create(in ProductInput) (*model.Product, error) {
	product := &model.Product{Active: true, InStock: true}
	applyProductInput(product, in)
	if product.Slug == "" {
		product.Slug = util.Slugify(product.Name)
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	var tags []model.ProductTag
	if in.TagIDs != nil {
		var err error
		if tags, err = s.tagRepo.FindByIDs(*in.TagIDs); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Create(product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	if err := s.productRepo.AppendTags(product, tags); err != nil {
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return s.GetByID(product.ID)
}

func (s *productService) Update(id uint, in ProductInput) (*model.Product, error) {
	product, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	applyProductInput(product, in)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	if in.TagIDs != nil {
		tags, err := s.tagRepo.FindByIDs(*in.TagIDs)
		if err != nil {
			return nil, err
		}
		if err := s.productRepo.ReplaceTags(product, tags); err != nil {
			return nil, err
		}
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return s.GetByID(product.ID)
}

func (s *productService) SetInStock(id uint, inStock bool) error {
	if err := s.productRepo.UpdateInStock(id, inStock); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	logger.Info("Product stock flag changed", map[string]interface{}{
		"product_id": id,
		"in_stock":   inStock,
	})
	return nil
}

func (s *productService) Delete(id uint) error {
	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func applyProductInput(p *model.Product, in ProductInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		p.Slug = strings.TrimSpace(*in.Slug)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
}

func validateProduct(p *model.Product) error {
	if p.Name == "" || len([]rune(p.Name)) > maxNameLength {
		return ErrInvalidName
	}
	if !util.IsValidSlug(p.Slug) {
		return ErrInvalidSlug
	}
	return ValidatePrice(p.Price)
}

// ValidatePrice enforces the decimal(6,2) column range.
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() || price.GreaterThan(maxPrice) || !price.Equal(price.Round(2)) {
		return ErrInvalidPrice
	}
	return nil
}
