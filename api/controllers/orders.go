package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maxmagma/wedstay-backend/api/middleware"
	"github.com/maxmagma/wedstay-backend/api/responses"
	"github.com/maxmagma/wedstay-backend/api/validators"
	"github.com/maxmagma/wedstay-backend/internal/guard"
	ordersvc "github.com/maxmagma/wedstay-backend/internal/orders"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
)

type checkoutItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type checkoutRequest struct {
	CustomerEmail string                `json:"customer_email" validate:"required,email"`
	CustomerPhone *string               `json:"customer_phone,omitempty"`
	CustomerName  *string               `json:"customer_name,omitempty"`
	EventDate     *time.Time            `json:"event_date,omitempty"`
	EventLocation *string               `json:"event_location,omitempty"`
	EventType     *string               `json:"event_type,omitempty"`
	Items         []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	Tax           *string               `json:"tax,omitempty"`
	Shipping      *string               `json:"shipping,omitempty"`
	Discount      *string               `json:"discount,omitempty"`
	Currency      *string               `json:"currency,omitempty" validate:"omitempty,len=3"`
}

func (req checkoutRequest) toInput() (ordersvc.CheckoutInput, error) {
	items := make([]ordersvc.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(strings.TrimSpace(item.ProductID))
		if err != nil {
			return ordersvc.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		items = append(items, ordersvc.CheckoutItem{ProductID: productID, Quantity: item.Quantity})
	}

	tax, err := parseOptionalAmount(req.Tax, "tax")
	if err != nil {
		return ordersvc.CheckoutInput{}, err
	}
	shipping, err := parseOptionalAmount(req.Shipping, "shipping")
	if err != nil {
		return ordersvc.CheckoutInput{}, err
	}
	discount, err := parseOptionalAmount(req.Discount, "discount")
	if err != nil {
		return ordersvc.CheckoutInput{}, err
	}

	return ordersvc.CheckoutInput{
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		CustomerName:  req.CustomerName,
		EventDate:     req.EventDate,
		EventLocation: req.EventLocation,
		EventType:     req.EventType,
		Items:         items,
		Tax:           tax,
		Shipping:      shipping,
		Discount:      discount,
		Currency:      req.Currency,
	}, nil
}

func parseOptionalAmount(raw *string, field string) (decimal.Decimal, error) {
	if raw == nil {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field+" amount")
	}
	return amount, nil
}

// Checkout records a settled purchase. Guests are welcome; a logged-in
// customer gets the order attached to their account.
func Checkout(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), middleware.PrincipalFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// GetOrder returns one order to its owner or an admin.
func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetByID(r.Context(), middleware.PrincipalFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ListMyOrders serves the authenticated customer's purchase history.
func ListMyOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := svc.ListMine(r.Context(), middleware.PrincipalFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

type advanceOrderRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdvanceOrder moves fulfillment forward one step. Admin only.
func AdvanceOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload advanceOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		order, err := svc.Advance(r.Context(), middleware.PrincipalFromContext(r.Context()), orderID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// CancelOrder voids an unfulfilled order.
func CancelOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return orderTransition(logg, svc.Cancel)
}

// RefundOrder reverses a completed order and debits vendor revenue. Admin only.
func RefundOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return orderTransition(logg, svc.Refund)
}

func orderTransition(logg *logger.Logger, op func(ctx context.Context, principal *guard.Principal, orderID uuid.UUID) (*ordersvc.OrderDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := op(r.Context(), middleware.PrincipalFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
