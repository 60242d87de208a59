package checkout

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/velora-shop/velora-backend/internal/cart"
	"github.com/velora-shop/velora-backend/internal/orders"
	"github.com/velora-shop/velora-backend/internal/payments"
	"github.com/velora-shop/velora-backend/pkg/db/models"
	pkgerrors "github.com/velora-shop/velora-backend/pkg/errors"
	"github.com/velora-shop/velora-backend/pkg/logger"
)

type fakeTx struct {
	err   error
	calls int
}

func (f *fakeTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type fakeLedger struct {
	summary    cart.Summary
	summaryErr error
	cleared    int
	clearErr   error
}

func (f *fakeLedger) Add(context.Context, string, models.Product, int) error { return nil }
func (f *fakeLedger) Update(context.Context, string, int64, int) error      { return nil }
func (f *fakeLedger) Remove(context.Context, string, int64) error           { return nil }

func (f *fakeLedger) Clear(context.Context, string) error {
	f.cleared++
	return f.clearErr
}

func (f *fakeLedger) Summary(context.Context, string) (cart.Summary, error) {
	if f.summaryErr != nil {
		return cart.Summary{}, f.summaryErr
	}
	return f.summary, nil
}

type fakeOrdersRepo struct {
	created   *models.Order
	createErr error
}

func (f *fakeOrdersRepo) WithTx(*gorm.DB) orders.Repository { return f }

func (f *fakeOrdersRepo) Create(_ context.Context, order *models.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = order
	return nil
}

func (f *fakeOrdersRepo) FindByNumberForSession(context.Context, string, string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testCharger() payments.Validator {
	return payments.NewValidator(
		payments.WithClock(func() time.Time { return time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC) }),
		payments.WithEntropy(func() ([4]byte, error) { return [4]byte{0x01, 0x02, 0x03, 0x04}, nil }),
	)
}

func filledSummary() cart.Summary {
	return cart.Summary{
		Items: []cart.ResolvedItem{
			{
				ProductID: 1,
				Name:      "Desk Lamp",
				Slug:      "desk-lamp",
				UnitPrice: decimal.RequireFromString("19.99"),
				Quantity:  2,
				LineTotal: decimal.RequireFromString("39.98"),
			},
		},
		Count:       2,
		Subtotal:    decimal.RequireFromString("39.98"),
		ShippingFee: decimal.RequireFromString("9.99"),
		Total:       decimal.RequireFromString("49.97"),
	}
}

func cardInput() Input {
	return Input{
		Email:  "buyer@example.com",
		Method: MethodCard,
		Card:   payments.Card{Number: "4111111111111111", ExpiryMonth: 12, ExpiryYear: 2027},
	}
}

func newCheckout(t *testing.T, tx *fakeTx, ledger *fakeLedger, repo *fakeOrdersRepo) Service {
	t.Helper()
	svc, err := NewService(tx, ledger, testCharger(), repo, testLogger())
	require.NoError(t, err)
	return svc
}

func TestExecuteCardCheckout(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{}
	ledger := &fakeLedger{summary: filledSummary()}
	repo := &fakeOrdersRepo{}
	svc := newCheckout(t, tx, ledger, repo)

	order, err := svc.Execute(context.Background(), "sess", cardInput())
	require.NoError(t, err)

	require.NotNil(t, repo.created)
	assert.Equal(t, 1, tx.calls)
	assert.Equal(t, 1, ledger.cleared)

	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, "visa", order.PaymentBrand)
	require.NotNil(t, order.CardLastFour)
	assert.Equal(t, "1111", *order.CardLastFour)
	assert.Equal(t, "PAY-01020304", order.PaymentReference)
	assert.Nil(t, order.PayerEmail)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("49.97")))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "desk-lamp", order.Items[0].Slug)
	assert.NotEmpty(t, order.Number)
}

func TestExecutePayPalCheckout(t *testing.T) {
	t.Parallel()

	ledger := &fakeLedger{summary: filledSummary()}
	repo := &fakeOrdersRepo{}
	svc := newCheckout(t, &fakeTx{}, ledger, repo)

	order, err := svc.Execute(context.Background(), "sess", Input{
		Email:      "buyer@example.com",
		Method:     MethodPayPal,
		PayerEmail: "payer@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "paypal", order.PaymentBrand)
	assert.Equal(t, "PP-01020304", order.PaymentReference)
	assert.Nil(t, order.CardLastFour)
	require.NotNil(t, order.PayerEmail)
	assert.Equal(t, "payer@example.com", *order.PayerEmail)
}

func TestExecuteEmptyCart(t *testing.T) {
	t.Parallel()

	ledger := &fakeLedger{summary: cart.Summary{Items: []cart.ResolvedItem{}}}
	svc := newCheckout(t, &fakeTx{}, ledger, &fakeOrdersRepo{})

	_, err := svc.Execute(context.Background(), "sess", cardInput())

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Zero(t, ledger.cleared)
}

func TestExecuteRejectedCardKeepsCart(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{}
	ledger := &fakeLedger{summary: filledSummary()}
	repo := &fakeOrdersRepo{}
	svc := newCheckout(t, tx, ledger, repo)

	input := cardInput()
	input.Card.Number = "378282246310005" // amex

	_, err := svc.Execute(context.Background(), "sess", input)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodePaymentRejected, appErr.Code())
	assert.Equal(t, "Only Visa and Mastercard are supported.", appErr.Message())

	assert.Zero(t, tx.calls, "no transaction may open for a rejected card")
	assert.Nil(t, repo.created)
	assert.Zero(t, ledger.cleared)
}

func TestExecuteUnknownMethod(t *testing.T) {
	t.Parallel()

	svc := newCheckout(t, &fakeTx{}, &fakeLedger{summary: filledSummary()}, &fakeOrdersRepo{})

	_, err := svc.Execute(context.Background(), "sess", Input{Email: "a@b.c", Method: "crypto"})

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestExecutePersistFailureKeepsCart(t *testing.T) {
	t.Parallel()

	ledger := &fakeLedger{summary: filledSummary()}
	repo := &fakeOrdersRepo{createErr: errors.New("disk full")}
	svc := newCheckout(t, &fakeTx{}, ledger, repo)

	_, err := svc.Execute(context.Background(), "sess", cardInput())

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())
	assert.Zero(t, ledger.cleared)
}

func TestExecuteClearFailureStillSucceeds(t *testing.T) {
	t.Parallel()

	ledger := &fakeLedger{summary: filledSummary(), clearErr: errors.New("redis down")}
	svc := newCheckout(t, &fakeTx{}, ledger, &fakeOrdersRepo{})

	order, err := svc.Execute(context.Background(), "sess", cardInput())
	require.NoError(t, err)
	assert.NotNil(t, order)
}

func TestOrderNumberShape(t *testing.T) {
	t.Parallel()

	number := orderNumber()
	assert.Regexp(t, `^ORD-[0-9A-F]{12}$`, number)
	assert.NotEqual(t, number, orderNumber())
}
