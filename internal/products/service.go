package products

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/velora-shop/velora-backend/pkg/db/models"
	pkgerrors "github.com/velora-shop/velora-backend/pkg/errors"
	"github.com/velora-shop/velora-backend/pkg/pagination"
)

// ListParams are the pagination inputs of the browse endpoint.
type ListParams struct {
	Limit  int
	Cursor string
}

// ListResult is one page of the visible catalog.
type ListResult struct {
	Products   []models.Product
	NextCursor string
}

// Service exposes catalog reads to the HTTP layer and to the cart,
// which resolves its lines through FindVisibleByIDs.
type Service interface {
	ListProducts(ctx context.Context, params ListParams) (*ListResult, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	FindVisibleByIDs(ctx context.Context, ids []int64) (map[int64]models.Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products: repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listParams{Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListVisible(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	result := &ListResult{Products: rows}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.repo.FindVisibleBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) FindVisibleByIDs(ctx context.Context, ids []int64) (map[int64]models.Product, error) {
	return s.repo.FindVisibleByIDs(ctx, ids)
}
