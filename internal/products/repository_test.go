package products

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/velora-shop/velora-backend/pkg/db/models"
	"github.com/velora-shop/velora-backend/pkg/pagination"
)

func setupProductsTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  image_url TEXT,
  is_visible INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, slug string, visible bool, createdAt time.Time) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:      "Product " + slug,
		Slug:      slug,
		Price:     decimal.RequireFromString("19.99"),
		Stock:     10,
		IsVisible: visible,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRepositoryFindVisibleByIDs(t *testing.T) {
	db := setupProductsTestDB(t, "products_by_ids")
	repo := NewRepository(db)

	now := time.Now().UTC()
	visible := seedProduct(t, db, "visible", true, now)
	hidden := seedProduct(t, db, "hidden", false, now)

	found, err := repo.FindVisibleByIDs(context.Background(), []int64{visible.ID, hidden.ID, 9999})
	require.NoError(t, err)

	require.Len(t, found, 1)
	got, ok := found[visible.ID]
	require.True(t, ok)
	assert.Equal(t, "visible", got.Slug)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("19.99")))
}

func TestRepositoryFindVisibleByIDsEmptyInput(t *testing.T) {
	db := setupProductsTestDB(t, "products_empty_ids")
	repo := NewRepository(db)

	found, err := repo.FindVisibleByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestRepositoryFindVisibleBySlug(t *testing.T) {
	db := setupProductsTestDB(t, "products_by_slug")
	repo := NewRepository(db)

	now := time.Now().UTC()
	seedProduct(t, db, "lamp", true, now)
	seedProduct(t, db, "retired-lamp", false, now)

	product, err := repo.FindVisibleBySlug(context.Background(), "lamp")
	require.NoError(t, err)
	assert.Equal(t, "lamp", product.Slug)

	_, err = repo.FindVisibleBySlug(context.Background(), "retired-lamp")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListVisiblePaginates(t *testing.T) {
	db := setupProductsTestDB(t, "products_list")
	repo := NewRepository(db)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		seedProduct(t, db, fmt.Sprintf("item-%d", i), true, base.Add(time.Duration(i)*time.Minute))
	}
	seedProduct(t, db, "draft", false, base.Add(time.Hour))

	firstPage, next, err := repo.ListVisible(context.Background(), listParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, firstPage, 2)
	require.NotNil(t, next)
	// Newest first.
	assert.Equal(t, "item-2", firstPage[0].Slug)
	assert.Equal(t, "item-1", firstPage[1].Slug)

	secondPage, last, err := repo.ListVisible(context.Background(), listParams{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, secondPage, 1)
	assert.Equal(t, "item-0", secondPage[0].Slug)
	assert.Nil(t, last)
}

func TestServiceListProductsEncodesCursor(t *testing.T) {
	db := setupProductsTestDB(t, "products_service_list")
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		seedProduct(t, db, fmt.Sprintf("svc-%d", i), true, base.Add(time.Duration(i)*time.Minute))
	}

	page, err := svc.ListProducts(context.Background(), ListParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	require.NotEmpty(t, page.NextCursor)

	cursor, err := pagination.ParseCursor(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, page.Products[1].ID, cursor.ID)

	rest, err := svc.ListProducts(context.Background(), ListParams{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Products, 1)
	assert.Empty(t, rest.NextCursor)
}

func TestServiceListProductsRejectsGarbageCursor(t *testing.T) {
	db := setupProductsTestDB(t, "products_bad_cursor")
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	_, err = svc.ListProducts(context.Background(), ListParams{Cursor: "not-base64!"})
	assert.Error(t, err)
}

func TestServiceGetBySlugNotFound(t *testing.T) {
	db := setupProductsTestDB(t, "products_slug_missing")
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	_, err = svc.GetBySlug(context.Background(), "nope")
	assert.Error(t, err)
}
