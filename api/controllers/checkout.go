package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velora-shop/velora-backend/api/responses"
	"github.com/velora-shop/velora-backend/api/validators"
	"github.com/velora-shop/velora-backend/internal/checkout"
	"github.com/velora-shop/velora-backend/internal/payments"
	"github.com/velora-shop/velora-backend/pkg/db/models"
	"github.com/velora-shop/velora-backend/pkg/logger"
)

type checkoutRequest struct {
	Email      string       `json:"email" validate:"required,email"`
	Method     string       `json:"method" validate:"required,oneof=card paypal"`
	Card       *cardPayload `json:"card" validate:"required_if=Method card"`
	PayerEmail string       `json:"payer_email" validate:"required_if=Method paypal,omitempty,email"`
}

// Number length allows for the separators buyers type; the digits are
// stripped before the charge and the validator bounds the real length.
type cardPayload struct {
	Number      string `json:"number" validate:"required,min=12,max=24"`
	ExpiryMonth int    `json:"expiry_month" validate:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiry_year" validate:"required,min=2000,max=2100"`
}

type orderItemResponse struct {
	ProductID *int64          `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	ImageURL  *string         `json:"image_url,omitempty"`
}

type orderResponse struct {
	Number           string              `json:"number"`
	Status           string              `json:"status"`
	Email            string              `json:"email"`
	ItemCount        int                 `json:"item_count"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	ShippingFee      decimal.Decimal     `json:"shipping_fee"`
	Total            decimal.Decimal     `json:"total"`
	PaymentBrand     string              `json:"payment_brand"`
	CardLastFour     *string             `json:"card_last_four,omitempty"`
	PaymentReference string              `json:"payment_reference"`
	PayerEmail       *string             `json:"payer_email,omitempty"`
	PaidAt           time.Time           `json:"paid_at"`
	Items            []orderItemResponse `json:"items"`
}

func newOrderResponse(order *models.Order) orderResponse {
	out := orderResponse{
		Number:           order.Number,
		Status:           order.Status,
		Email:            order.Email,
		ItemCount:        order.ItemCount,
		Subtotal:         order.Subtotal,
		ShippingFee:      order.ShippingFee,
		Total:            order.Total,
		PaymentBrand:     order.PaymentBrand,
		CardLastFour:     order.CardLastFour,
		PaymentReference: order.PaymentReference,
		PayerEmail:       order.PayerEmail,
		PaidAt:           order.PaidAt,
		Items:            make([]orderItemResponse, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		out.Items = append(out.Items, orderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Slug:      item.Slug,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
			ImageURL:  item.ImageURL,
		})
	}
	return out
}

// Checkout charges the cart and returns the created order.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(r, logg, w)
		if !ok {
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkout.Input{
			Email:      payload.Email,
			Method:     payload.Method,
			PayerEmail: payload.PayerEmail,
		}
		if payload.Card != nil {
			input.Card = payments.Card{
				Number:      payments.NormalizeNumber(payload.Card.Number),
				ExpiryMonth: payload.Card.ExpiryMonth,
				ExpiryYear:  payload.Card.ExpiryYear,
			}
		}

		order, err := svc.Execute(r.Context(), sid, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}
