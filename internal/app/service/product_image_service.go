package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/internal/storage"
	"github.com/booktime/booktime/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrImageNotFound      = errors.New("image not found")
	ErrUnsupportedImage   = errors.New("only JPEG, PNG, GIF and WEBP images are allowed")
	ErrImageTooLarge      = errors.New("image exceeds the maximum upload size")
	ErrImageAlreadyExists = errors.New("image already attached to product")
)

type ProductImageService interface {
	List(productSearch string) ([]model.ProductImage, error)
	GetByID(id uint) (*model.ProductImage, error)
	Attach(ctx context.Context, productID uint, originalName string, data []byte) (*model.ProductImage, error)
	Delete(ctx context.Context, id uint) error
	URL(key string) string
}

type productImageService struct {
	imageRepo   repository.ProductImageRepository
	productRepo repository.ProductRepository
	storage     storage.Storage
}

func NewProductImageService(
	imageRepo repository.ProductImageRepository,
	productRepo repository.ProductRepository,
	store storage.Storage,
) ProductImageService {
	return &productImageService{
		imageRepo:   imageRepo,
		productRepo: productRepo,
		storage:     store,
	}
}

func (s *productImageService) List(productSearch string) ([]model.ProductImage, error) {
	return s.imageRepo.List(productSearch)
}

func (s *productImageService) GetByID(id uint) (*model.ProductImage, error) {
	image, err := s.imageRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return image, nil
}

// Attach stores the image and its generated thumbnail and links them to the product.
// A file name already attached to the product is rejected with ErrImageAlreadyExists.
func (s *productImageService) Attach(ctx context.Context, productID uint, originalName string, data []byte) (*model.ProductImage, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if err := storage.ValidateFileSize(int64(len(data)), storage.MaxImageSize); err != nil {
		return nil, ErrImageTooLarge
	}
	contentType := http.DetectContentType(data)
	if storage.ValidateContentType(contentType, storage.AllowedImageTypes) != nil {
		return nil, ErrUnsupportedImage
	}

	name := filepath.Base(originalName)
	exists, err := s.imageRepo.ExistsByOriginalName(productID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrImageAlreadyExists
	}

	thumb, err := storage.MakeThumbnail(data)
	if err != nil {
		logger.Warn("Failed to generate thumbnail", map[string]interface{}{
			"product_id": productID,
			"file":       name,
			"error":      err.Error(),
		})
		return nil, ErrUnsupportedImage
	}

	imageKey, err := s.storage.Save(ctx, path.Join(storage.ImagesFolder, name), bytes.NewReader(data), contentType)
	if err != nil {
		return nil, err
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	thumbKey, err := s.storage.Save(ctx, path.Join(storage.ThumbnailsFolder, stem+".jpg"), bytes.NewReader(thumb), "image/jpeg")
	if err != nil {
		_ = s.storage.Delete(ctx, imageKey)
		return nil, err
	}

	image := &model.ProductImage{
		ProductID:    productID,
		Image:        imageKey,
		Thumbnail:    thumbKey,
		OriginalName: name,
	}
	if err := s.imageRepo.Create(image); err != nil {
		_ = s.storage.Delete(ctx, imageKey)
		_ = s.storage.Delete(ctx, thumbKey)
		return nil, err
	}

	logger.Info("Product image attached", map[string]interface{}{
		"product_id": productID,
		"image_id":   image.ID,
		"image":      imageKey,
	})
	return image, nil
}

func (s *productImageService) Delete(ctx context.Context, id uint) error {
	image, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.imageRepo.Delete(id); err != nil {
		return err
	}

	for _, key := range []string{image.Image, image.Thumbnail} {
		if key == "" {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			logger.Warn("Failed to delete media file", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
	return nil
}

func (s *productImageService) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.storage.URL(key)
}
