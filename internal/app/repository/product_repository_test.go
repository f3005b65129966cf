package repository

import (
	"testing"
	"time"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductTest(t *testing.T) (*gorm.DB, ProductRepository, ProductTagRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return testDB, NewProductRepository(testDB), NewProductTagRepository(testDB)
}

func createProduct(t *testing.T, repo ProductRepository, name, slug, price string, active bool) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:    name,
		Slug:    slug,
		Price:   decimal.RequireFromString(price),
		Active:  active,
		InStock: true,
	}
	require.NoError(t, repo.Create(product))
	return product
}

func productNames(products []model.Product) []string {
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}
	return names
}

func TestProductRepository_FindActive(t *testing.T) {
	_, repo, _ := setupProductTest(t)

	createProduct(t, repo, "The Prince", "the-prince", "1.00", true)
	createProduct(t, repo, "The Great Gatsby", "the-great-gatsby", "3.00", false)
	createProduct(t, repo, "Beyond Good and Evil", "beyond-good-and-evil", "2.00", true)

	products, err := repo.FindActive()
	require.NoError(t, err)
	assert.Equal(t, []string{"Beyond Good and Evil", "The Prince"}, productNames(products))
}

func TestProductRepository_FindActiveByTag(t *testing.T) {
	_, repo, tagRepo := setupProductTest(t)

	prince := createProduct(t, repo, "The Prince", "the-prince", "1.00", true)
	createProduct(t, repo, "Beyond Good and Evil", "beyond-good-and-evil", "2.00", true)
	hidden := createProduct(t, repo, "Discourses", "discourses", "4.00", false)

	tag := &model.ProductTag{Name: "Philosophy", Slug: "philosophy", Active: true}
	require.NoError(t, tagRepo.Create(tag))
	require.NoError(t, repo.AppendTags(prince, []model.ProductTag{*tag}))
	require.NoError(t, repo.AppendTags(hidden, []model.ProductTag{*tag}))

	products, err := repo.FindActiveByTag("philosophy")
	require.NoError(t, err)
	assert.Equal(t, []string{"The Prince"}, productNames(products))
	require.Len(t, products[0].Tags, 1)
	assert.Equal(t, "philosophy", products[0].Tags[0].Slug)

	products, err = repo.FindActiveByTag("unknown")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductRepository_DuplicateSlug(t *testing.T) {
	_, repo, _ := setupProductTest(t)

	createProduct(t, repo, "The Prince", "the-prince", "1.00", true)
	err := repo.Create(&model.Product{Name: "Other", Slug: "the-prince", Price: decimal.NewFromInt(1)})
	assert.Error(t, err)
}

func TestProductRepository_PersistsExplicitFalse(t *testing.T) {
	_, repo, _ := setupProductTest(t)

	product := &model.Product{Name: "Out", Slug: "out", Price: decimal.NewFromInt(5), Active: false, InStock: false}
	require.NoError(t, repo.Create(product))

	found, err := repo.FindBySlug("out")
	require.NoError(t, err)
	assert.False(t, found.Active)
	assert.False(t, found.InStock)
	assert.True(t, decimal.NewFromInt(5).Equal(found.Price))
}

func TestProductRepository_List(t *testing.T) {
	_, repo, _ := setupProductTest(t)

	createProduct(t, repo, "The Prince", "the-prince", "1.00", true)
	gatsby := createProduct(t, repo, "The Great Gatsby", "the-great-gatsby", "3.00", false)
	require.NoError(t, repo.UpdateInStock(gatsby.ID, false))

	inactive := false
	products, total, err := repo.List(ProductFilter{Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "The Great Gatsby", products[0].Name)

	inStock := true
	products, _, err = repo.List(ProductFilter{InStock: &inStock})
	require.NoError(t, err)
	assert.Equal(t, []string{"The Prince"}, productNames(products))

	products, _, err = repo.List(ProductFilter{Search: "gats"})
	require.NoError(t, err)
	assert.Equal(t, []string{"The Great Gatsby"}, productNames(products))

	future := time.Now().Add(time.Hour)
	products, total, err = repo.List(ProductFilter{UpdatedSince: &future})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, products)
}

func TestProductRepository_ReplaceTagsAndDelete(t *testing.T) {
	testDB, repo, tagRepo := setupProductTest(t)

	product := createProduct(t, repo, "The Prince", "the-prince", "1.00", true)
	a := &model.ProductTag{Name: "A", Slug: "a", Active: true}
	b := &model.ProductTag{Name: "B", Slug: "b", Active: true}
	require.NoError(t, tagRepo.Create(a))
	require.NoError(t, tagRepo.Create(b))

	require.NoError(t, repo.AppendTags(product, []model.ProductTag{*a}))
	require.NoError(t, repo.ReplaceTags(product, []model.ProductTag{*b}))

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	require.Len(t, found.Tags, 1)
	assert.Equal(t, "b", found.Tags[0].Slug)

	require.NoError(t, testDB.Create(&model.ProductImage{ProductID: product.ID, Image: "product-images/x.jpg"}).Error)
	require.NoError(t, repo.Delete(product.ID))

	_, err = repo.FindByID(product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var images int64
	testDB.Model(&model.ProductImage{}).Count(&images)
	assert.Zero(t, images)

	assert.ErrorIs(t, repo.Delete(product.ID), gorm.ErrRecordNotFound)
}
