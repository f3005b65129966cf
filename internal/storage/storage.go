package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/booktime/booktime/config"
	"github.com/google/uuid"
)

const (
	ImagesFolder     = "product-images"
	ThumbnailsFolder = "product-thumbnails"

	MaxImageSize = 10 << 20
)

var AllowedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

// Storage persists media files under slash-separated keys.
type Storage interface {
	// Save writes the content under key, or under a derived key if key is taken,
	// and returns the key actually used.
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New builds the backend selected by MEDIA_BACKEND.
func New(media *config.MediaConfig, s3cfg *config.S3Config) (Storage, error) {
	switch media.Backend {
	case "", "local":
		return NewLocalStorage(media.Root, media.URL), nil
	case "s3":
		if s3cfg.Bucket == "" {
			return nil, fmt.Errorf("MEDIA_BACKEND=s3 requires AWS_S3_BUCKET")
		}
		return NewS3Storage(s3cfg.Region, s3cfg.Bucket, s3cfg.AccessKeyID, s3cfg.SecretAccessKey, s3cfg.BaseURL), nil
	}
	return nil, fmt.Errorf("unknown media backend %q", media.Backend)
}

// alternativeKey appends a short random suffix to the file stem.
func alternativeKey(key string) string {
	ext := path.Ext(key)
	stem := strings.TrimSuffix(key, ext)
	return fmt.Sprintf("%s_%s%s", stem, uuid.New().String()[:7], ext)
}

func ValidateFileSize(size int64, maxSize int64) error {
	if size > maxSize {
		return fmt.Errorf("file size exceeds maximum allowed size of %d bytes", maxSize)
	}
	return nil
}

func ValidateContentType(contentType string, allowedTypes []string) error {
	for _, allowed := range allowedTypes {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("content type %s is not allowed", contentType)
}
