package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/internal/db"
	"github.com/booktime/booktime/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type catalogFixture struct {
	db       *gorm.DB
	products ProductService
	tags     ProductTagService
	images   ProductImageService
	storage  *storage.LocalStorage
	repos    struct {
		product repository.ProductRepository
		tag     repository.ProductTagRepository
		image   repository.ProductImageRepository
		run     repository.ImportRunRepository
	}
}

func setupCatalogTest(t *testing.T) *catalogFixture {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	f := &catalogFixture{db: testDB}
	f.repos.product = repository.NewProductRepository(testDB)
	f.repos.tag = repository.NewProductTagRepository(testDB)
	f.repos.image = repository.NewProductImageRepository(testDB)
	f.repos.run = repository.NewImportRunRepository(testDB)
	f.storage = storage.NewLocalStorage(t.TempDir(), "/media/")

	f.products = NewProductService(f.repos.product, f.repos.tag)
	f.tags = NewProductTagService(f.repos.tag)
	f.images = NewProductImageService(f.repos.image, f.repos.product, f.storage)
	return f
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
