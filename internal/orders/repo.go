package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/velora-shop/velora-backend/pkg/db/models"
)

// Repository persists orders written by checkout and read back by the
// order status endpoint.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByNumberForSession(ctx context.Context, sessionID, number string) (*models.Order, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// Create inserts the order and its line items in one statement batch.
func (r *repositoryImpl) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByNumberForSession scopes the lookup to the caller's session so
// one browser cannot read another's order.
func (r *repositoryImpl) FindByNumberForSession(ctx context.Context, sessionID, number string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "number = ? AND session_id = ?", number, sessionID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
