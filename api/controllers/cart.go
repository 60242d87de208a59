package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/velora-shop/velora-backend/api/middleware"
	"github.com/velora-shop/velora-backend/api/responses"
	"github.com/velora-shop/velora-backend/api/validators"
	"github.com/velora-shop/velora-backend/internal/cart"
	"github.com/velora-shop/velora-backend/internal/products"
	pkgerrors "github.com/velora-shop/velora-backend/pkg/errors"
	"github.com/velora-shop/velora-backend/pkg/logger"
)

type addItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int   `json:"quantity" validate:"omitempty,min=1,max=1000"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=1000"`
}

func sessionID(r *http.Request, logg *logger.Logger, w http.ResponseWriter) (string, bool) {
	id := middleware.SessionIDFromContext(r.Context())
	if id == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session middleware missing"))
		return "", false
	}
	return id, true
}

func cartProductID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "productID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	return id, nil
}

// CartGet returns the resolved cart with totals and shipping.
func CartGet(ledger cart.Ledger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(r, logg, w)
		if !ok {
			return
		}

		summary, err := ledger.Summary(r.Context(), sid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

// CartAddItem adds a catalog product to the cart. The product must
// exist and be visible; quantity defaults to one and is capped at the
// available stock.
func CartAddItem(ledger cart.Ledger, catalog products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(r, logg, w)
		if !ok {
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity == 0 {
			payload.Quantity = 1
		}

		found, err := catalog.FindVisibleByIDs(r.Context(), []int64{payload.ProductID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product"))
			return
		}
		product, ok := found[payload.ProductID]
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		if err := ledger.Add(r.Context(), sid, product, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeCartSummary(w, r, ledger, logg, sid)
	}
}

// CartUpdateItem sets an exact quantity for a line. Zero removes it.
func CartUpdateItem(ledger cart.Ledger, catalog products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(r, logg, w)
		if !ok {
			return
		}

		productID, err := cartProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity := *payload.Quantity

		// The ledger applies whatever quantity it is given, so stock
		// is enforced here where the product can be loaded.
		if quantity > 0 {
			found, err := catalog.FindVisibleByIDs(r.Context(), []int64{productID})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product"))
				return
			}
			product, ok := found[productID]
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
				return
			}
			if quantity > product.Stock {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds available stock").
					WithDetails(map[string]any{"stock": product.Stock}))
				return
			}
		}

		if err := ledger.Update(r.Context(), sid, productID, quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeCartSummary(w, r, ledger, logg, sid)
	}
}

// CartRemoveItem drops a line; removing an absent line succeeds.
func CartRemoveItem(ledger cart.Ledger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(r, logg, w)
		if !ok {
			return
		}

		productID, err := cartProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := ledger.Remove(r.Context(), sid, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeCartSummary(w, r, ledger, logg, sid)
	}
}

// CartClear empties the cart.
func CartClear(ledger cart.Ledger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(r, logg, w)
		if !ok {
			return
		}

		if err := ledger.Clear(r.Context(), sid); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeCartSummary(w, r, ledger, logg, sid)
	}
}

func writeCartSummary(w http.ResponseWriter, r *http.Request, ledger cart.Ledger, logg *logger.Logger, sid string) {
	summary, err := ledger.Summary(r.Context(), sid)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, summary)
}
