package service

import (
	"errors"
	"strings"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/pkg/logger"
	"github.com/booktime/booktime/pkg/util"
	"gorm.io/gorm"
)

type TagInput struct {
	Name        *string
	Slug        *string
	Description *string
	Active      *bool
}

type ProductTagService interface {
	List(filter repository.TagFilter) ([]model.ProductTag, error)
	GetByID(id uint) (*model.ProductTag, error)
	Create(in TagInput) (*model.ProductTag, error)
	Update(id uint, in TagInput) (*model.ProductTag, error)
	Delete(id uint) error
}

type productTagService struct {
	tagRepo repository.ProductTagRepository
}

func NewProductTagService(tagRepo repository.ProductTagRepository) ProductTagService {
	return &productTagService{tagRepo: tagRepo}
}

func (s *productTagService) List(filter repository.TagFilter) ([]model.ProductTag, error) {
	return s.tagRepo.List(filter)
}

func (s *productTagService) GetByID(id uint) (*model.ProductTag, error) {
	tag, err := s.tagRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return tag, nil
}

// Create stores a new tag, active unless stated otherwise, slugging the name when no slug is given.
func (s *productTagService) Create(in TagInput) (*model.ProductTag, error) {
	tag := &model.ProductTag{Active: true}
	applyTagInput(tag, in)
	if tag.Slug == "" {
		tag.Slug = util.Slugify(tag.Name)
	}
	if err := validateTag(tag); err != nil {
		return nil, err
	}

	if err := s.tagRepo.Create(tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	logger.Info("Product tag created", map[string]interface{}{
		"tag_id": tag.ID,
		"slug":   tag.Slug,
	})
	return tag, nil
}

func (s *productTagService) Update(id uint, in TagInput) (*model.ProductTag, error) {
	tag, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	applyTagInput(tag, in)
	if err := validateTag(tag); err != nil {
		return nil, err
	}

	if err := s.tagRepo.Update(tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return tag, nil
}

func (s *productTagService) Delete(id uint) error {
	if err := s.tagRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTagNotFound
		}
		return err
	}
	logger.Info("Product tag deleted", map[string]interface{}{
		"tag_id": id,
	})
	return nil
}

func applyTagInput(t *model.ProductTag, in TagInput) {
	if in.Name != nil {
		t.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		t.Slug = strings.TrimSpace(*in.Slug)
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Active != nil {
		t.Active = *in.Active
	}
}

func validateTag(t *model.ProductTag) error {
	if t.Name == "" || len([]rune(t.Name)) > maxNameLength {
		return ErrInvalidName
	}
	if !util.IsValidSlug(t.Slug) {
		return ErrInvalidSlug
	}
	return nil
}
