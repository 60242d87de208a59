package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. There is no pending state: an order row only exists
// once payment has been captured.
const (
	OrderStatusPaid = "paid"
)

// Order is the header row persisted after a successful checkout.
type Order struct {
	ID               int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Number           string          `gorm:"column:number;uniqueIndex;not null"`
	SessionID        string          `gorm:"column:session_id;index;not null"`
	Email            string          `gorm:"column:email;not null"`
	Status           string          `gorm:"column:status;not null;default:'paid'"`
	ItemCount        int             `gorm:"column:item_count;not null"`
	Subtotal         decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null"`
	ShippingFee      decimal.Decimal `gorm:"column:shipping_fee;type:numeric(10,2);not null"`
	Total            decimal.Decimal `gorm:"column:total;type:numeric(10,2);not null"`
	PaymentBrand     string          `gorm:"column:payment_brand;not null"`
	CardLastFour     *string         `gorm:"column:card_last_four"`
	PaymentReference string          `gorm:"column:payment_reference;uniqueIndex;not null"`
	PayerEmail       *string         `gorm:"column:payer_email"`
	PaidAt           time.Time       `gorm:"column:paid_at;not null"`
	Items            []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem snapshots one resolved cart line at purchase time. Product
// data is denormalized so later catalog edits do not rewrite history.
type OrderItem struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"column:order_id;index;not null"`
	ProductID *int64          `gorm:"column:product_id"`
	Name      string          `gorm:"column:name;not null"`
	Slug      string          `gorm:"column:slug;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(10,2);not null"`
	ImageURL  *string         `gorm:"column:image_url"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
