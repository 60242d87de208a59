package orders

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
)

func setupOrdersTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  number TEXT NOT NULL UNIQUE,
  session_id TEXT NOT NULL,
  email TEXT NOT NULL,
  status TEXT NOT NULL,
  item_count INTEGER NOT NULL,
  subtotal NUMERIC NOT NULL,
  shipping_fee NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  payment_brand TEXT NOT NULL,
  card_last_four TEXT,
  payment_reference TEXT NOT NULL UNIQUE,
  payer_email TEXT,
  paid_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL,
  product_id INTEGER,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  unit_price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL,
  line_total NUMERIC NOT NULL,
  image_url TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func sampleOrder(sessionID, number string) *models.Order {
	productID := int64(42)
	lastFour := "1111"
	return &models.Order{
		Number:           number,
		SessionID:        sessionID,
		Email:            "buyer@example.com",
		Status:           models.OrderStatusPaid,
		ItemCount:        2,
		Subtotal:         decimal.RequireFromString("39.98"),
		ShippingFee:      decimal.RequireFromString("9.99"),
		Total:            decimal.RequireFromString("49.97"),
		PaymentBrand:     "visa",
		CardLastFour:     &lastFour,
		PaymentReference: "PAY-" + number,
		PaidAt:           time.Now().UTC(),
		Items: []models.OrderItem{
			{
				ProductID: &productID,
				Name:      "Desk Lamp",
				Slug:      "desk-lamp",
				UnitPrice: decimal.RequireFromString("19.99"),
				Quantity:  2,
				LineTotal: decimal.RequireFromString("39.98"),
			},
		},
	}
}

func TestRepositoryCreatePersistsItems(t *testing.T) {
	db := setupOrdersTestDB(t, "orders_create")
	repo := NewRepository(db)

	order := sampleOrder("sess-1", "A1B2C3")
	require.NoError(t, repo.Create(context.Background(), order))
	require.NotZero(t, order.ID)

	var itemCount int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
	assert.Equal(t, int64(1), itemCount)
}

func TestRepositoryFindByNumberForSession(t *testing.T) {
	db := setupOrdersTestDB(t, "orders_find")
	repo := NewRepository(db)

	order := sampleOrder("sess-1", "D4E5F6")
	require.NoError(t, repo.Create(context.Background(), order))

	found, err := repo.FindByNumberForSession(context.Background(), "sess-1", "D4E5F6")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "desk-lamp", found.Items[0].Slug)
	assert.True(t, found.Total.Equal(decimal.RequireFromString("49.97")))
}

func TestRepositoryFindByNumberWrongSession(t *testing.T) {
	db := setupOrdersTestDB(t, "orders_wrong_session")
	repo := NewRepository(db)

	require.NoError(t, repo.Create(context.Background(), sampleOrder("sess-1", "G7H8I9")))

	_, err := repo.FindByNumberForSession(context.Background(), "sess-2", "G7H8I9")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryWithTxRollback(t *testing.T) {
	db := setupOrdersTestDB(t, "orders_rollback")
	repo := NewRepository(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := repo.WithTx(tx).Create(context.Background(), sampleOrder("sess-1", "J1K2L3")); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}
