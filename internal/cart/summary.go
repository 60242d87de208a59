package cart

import (
	"github.com/shopspring/decimal"
)

// ResolvedItem is one cart line joined against the current catalog
// snapshot. LineTotal is rounded to two decimals at computation time.
type ResolvedItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	ImageURL  *string         `json:"image_url,omitempty"`
}

// Summary is the derived view of a cart. It is recomputed fully on
// every read and never cached across mutations.
type Summary struct {
	Items       []ResolvedItem  `json:"items"`
	Count       int             `json:"count"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Total       decimal.Decimal `json:"total"`
}

// IsEmpty reports whether the summary resolved to zero purchasable lines.
func (s Summary) IsEmpty() bool {
	return len(s.Items) == 0
}

// Pricing holds the shipping policy applied to every summary.
type Pricing struct {
	ShippingFlatFee       decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// ShippingFor applies the flat-fee policy: free for an empty cart and
// for subtotals at or above the threshold.
func (p Pricing) ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.IsZero() || subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.ShippingFlatFee
}
