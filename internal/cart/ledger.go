package cart

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/velora-shop/velora-backend/pkg/db/models"
)

type catalog interface {
	FindVisibleByIDs(ctx context.Context, ids []int64) (map[int64]models.Product, error)
}

// Ledger exposes the session-scoped cart operations.
type Ledger interface {
	Add(ctx context.Context, sessionID string, product models.Product, requestedQty int) error
	Update(ctx context.Context, sessionID string, productID int64, quantity int) error
	Remove(ctx context.Context, sessionID string, productID int64) error
	Clear(ctx context.Context, sessionID string) error
	Summary(ctx context.Context, sessionID string) (Summary, error)
}

type ledger struct {
	store   SessionStore
	catalog catalog
	pricing Pricing
}

// NewLedger builds a cart ledger backed by the provided stores.
func NewLedger(store SessionStore, catalog catalog, pricing Pricing) (Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	return &ledger{
		store:   store,
		catalog: catalog,
		pricing: pricing,
	}, nil
}

// Add floors the requested quantity at 1 and clamps the resulting line
// quantity to the product's current stock. A zero-stock product leaves
// the line at its current quantity, which for a fresh line means no
// line at all. Adds never fail on stock.
func (l *ledger) Add(ctx context.Context, sessionID string, product models.Product, requestedQty int) error {
	if requestedQty < 1 {
		requestedQty = 1
	}

	lines, _, err := l.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if lines == nil {
		lines = map[int64]int{}
	}

	next := lines[product.ID] + requestedQty
	if next > product.Stock {
		next = product.Stock
	}
	if next <= 0 {
		delete(lines, product.ID)
	} else {
		lines[product.ID] = next
	}

	return l.store.Put(ctx, sessionID, lines)
}

// Update sets the exact caller-supplied quantity, or removes the line
// when the quantity is zero or negative. Unlike Add, the value is NOT
// re-clamped against live stock: the request-validation layer bounds it
// with the product's stock before this call.
func (l *ledger) Update(ctx context.Context, sessionID string, productID int64, quantity int) error {
	lines, _, err := l.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if lines == nil {
		lines = map[int64]int{}
	}

	if quantity <= 0 {
		delete(lines, productID)
	} else {
		lines[productID] = quantity
	}

	return l.store.Put(ctx, sessionID, lines)
}

// Remove deletes the line unconditionally. Removing an absent line is
// not an error.
func (l *ledger) Remove(ctx context.Context, sessionID string, productID int64) error {
	lines, found, err := l.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	delete(lines, productID)
	return l.store.Put(ctx, sessionID, lines)
}

// Clear empties the whole cart.
func (l *ledger) Clear(ctx context.Context, sessionID string) error {
	return l.store.Forget(ctx, sessionID)
}

// Summary resolves the stored lines against the live catalog. Lines
// whose product is missing or no longer visible are silently omitted.
// They stay in storage and reappear if the product becomes visible
// again. The stored map is never mutated here.
func (l *ledger) Summary(ctx context.Context, sessionID string) (Summary, error) {
	lines, found, err := l.store.Get(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	if !found || len(lines) == 0 {
		return emptySummary(), nil
	}

	ids := make([]int64, 0, len(lines))
	for id := range lines {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	catalogued, err := l.catalog.FindVisibleByIDs(ctx, ids)
	if err != nil {
		return Summary{}, err
	}

	items := make([]ResolvedItem, 0, len(ids))
	count := 0
	subtotal := decimal.Zero
	for _, id := range ids {
		product, ok := catalogued[id]
		if !ok {
			continue
		}
		qty := lines[id]
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(qty))).Round(2)
		items = append(items, ResolvedItem{
			ProductID: product.ID,
			Name:      product.Name,
			Slug:      product.Slug,
			UnitPrice: product.Price,
			Quantity:  qty,
			LineTotal: lineTotal,
			ImageURL:  product.ImageURL,
		})
		count += qty
		subtotal = subtotal.Add(lineTotal)
	}

	if len(items) == 0 {
		return emptySummary(), nil
	}

	shipping := l.pricing.ShippingFor(subtotal)
	return Summary{
		Items:       items,
		Count:       count,
		Subtotal:    subtotal,
		ShippingFee: shipping,
		Total:       subtotal.Add(shipping),
	}, nil
}

func emptySummary() Summary {
	return Summary{
		Items:       []ResolvedItem{},
		Subtotal:    decimal.Zero,
		ShippingFee: decimal.Zero,
		Total:       decimal.Zero,
	}
}
