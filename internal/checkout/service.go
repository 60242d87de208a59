package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-shop/velora-backend/internal/cart"
	"github.com/velora-shop/velora-backend/internal/orders"
	"github.com/velora-shop/velora-backend/internal/payments"
	"github.com/velora-shop/velora-backend/pkg/db/models"
	pkgerrors "github.com/velora-shop/velora-backend/pkg/errors"
	"github.com/velora-shop/velora-backend/pkg/logger"
)

// Payment method identifiers accepted by Execute.
const (
	MethodCard   = "card"
	MethodPayPal = "paypal"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Input carries the buyer details for one checkout attempt. Exactly one
// of Card or PayerEmail is used depending on Method.
type Input struct {
	Email      string
	Method     string
	Card       payments.Card
	PayerEmail string
}

// Service turns the current cart into a paid order.
type Service interface {
	Execute(ctx context.Context, sessionID string, input Input) (*models.Order, error)
}

type service struct {
	tx         txRunner
	ledger     cart.Ledger
	charger    payments.Validator
	ordersRepo orders.Repository
	logg       *logger.Logger
	newNumber  func() string
}

func NewService(
	tx txRunner,
	ledger cart.Ledger,
	charger payments.Validator,
	ordersRepo orders.Repository,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("cart ledger required")
	}
	if charger == nil {
		return nil, fmt.Errorf("payment validator required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:         tx,
		ledger:     ledger,
		charger:    charger,
		ordersRepo: ordersRepo,
		logg:       logg,
		newNumber:  orderNumber,
	}, nil
}

// Execute charges the payment first and only then opens the database
// transaction, so a rejected card never leaves a partial order behind.
func (s *service) Execute(ctx context.Context, sessionID string, input Input) (*models.Order, error) {
	summary, err := s.ledger.Summary(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if summary.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	auth, err := s.charge(input, summary)
	if err != nil {
		return nil, err
	}

	order := s.buildOrder(sessionID, input, summary, auth)
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.ordersRepo.WithTx(tx).Create(ctx, order)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	// The order is committed and the payment captured; a cart that
	// fails to clear is an annoyance, not a reason to fail checkout.
	if err := s.ledger.Clear(ctx, sessionID); err != nil {
		s.logg.Error(s.logg.WithSessionID(ctx, sessionID), "clearing cart after checkout", err)
	}

	return order, nil
}

func (s *service) charge(input Input, summary cart.Summary) (payments.Authorization, error) {
	var (
		auth payments.Authorization
		err  error
	)
	switch input.Method {
	case MethodCard:
		auth, err = s.charger.ChargeCard(input.Card, summary.Total)
	case MethodPayPal:
		auth, err = s.charger.ChargeWallet(input.PayerEmail, summary.Total)
	default:
		return payments.Authorization{}, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}
	if err != nil {
		var rejected *payments.UnsupportedCardError
		if errors.As(err, &rejected) {
			return payments.Authorization{}, pkgerrors.New(pkgerrors.CodePaymentRejected, rejected.Message)
		}
		return payments.Authorization{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "charge payment")
	}
	return auth, nil
}

func (s *service) buildOrder(sessionID string, input Input, summary cart.Summary, auth payments.Authorization) *models.Order {
	order := &models.Order{
		Number:           s.newNumber(),
		SessionID:        sessionID,
		Email:            input.Email,
		Status:           models.OrderStatusPaid,
		ItemCount:        summary.Count,
		Subtotal:         summary.Subtotal,
		ShippingFee:      summary.ShippingFee,
		Total:            summary.Total,
		PaymentBrand:     auth.Brand,
		PaymentReference: auth.Reference,
		PaidAt:           auth.PaidAt,
		Items:            make([]models.OrderItem, 0, len(summary.Items)),
	}
	if auth.LastFour != "" {
		lastFour := auth.LastFour
		order.CardLastFour = &lastFour
	}
	if auth.PayerEmail != "" {
		payer := auth.PayerEmail
		order.PayerEmail = &payer
	}

	for _, item := range summary.Items {
		productID := item.ProductID
		order.Items = append(order.Items, models.OrderItem{
			ProductID: &productID,
			Name:      item.Name,
			Slug:      item.Slug,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
			ImageURL:  item.ImageURL,
		})
	}
	return order
}

// orderNumber derives a short customer-facing number from a v4 UUID.
func orderNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(raw[:12])
}
