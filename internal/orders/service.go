package orders

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/velora-shop/velora-backend/pkg/db/models"
	pkgerrors "github.com/velora-shop/velora-backend/pkg/errors"
)

// Service reads back orders for the session that placed them.
type Service interface {
	GetByNumber(ctx context.Context, sessionID, number string) (*models.Order, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders: repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByNumber(ctx context.Context, sessionID, number string) (*models.Order, error) {
	order, err := s.repo.FindByNumberForSession(ctx, sessionID, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
