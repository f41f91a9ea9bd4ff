package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/maxmagma/wedstay-backend/internal/aggregator"
	"github.com/maxmagma/wedstay-backend/internal/guard"
	"github.com/maxmagma/wedstay-backend/internal/lifecycle"
	"github.com/maxmagma/wedstay-backend/pkg/db"
	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
	"github.com/maxmagma/wedstay-backend/pkg/types"
)

const maxOrderNumberAttempts = 5

type orderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, extra map[string]any) (int64, error)
}

type productSource interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type eventSink interface {
	ApplyEvent(ctx context.Context, input aggregator.ApplyEventInput) error
}

// Service exposes order operations.
type Service interface {
	Checkout(ctx context.Context, principal *guard.Principal, input CheckoutInput) (*OrderDTO, error)
	GetByID(ctx context.Context, principal *guard.Principal, id uuid.UUID) (*OrderDTO, error)
	ListMine(ctx context.Context, principal *guard.Principal) ([]OrderDTO, error)
	Advance(ctx context.Context, principal *guard.Principal, orderID uuid.UUID, target enums.OrderStatus) (*OrderDTO, error)
	Cancel(ctx context.Context, principal *guard.Principal, orderID uuid.UUID) (*OrderDTO, error)
	Refund(ctx context.Context, principal *guard.Principal, orderID uuid.UUID) (*OrderDTO, error)
}

type service struct {
	repo     orderRepository
	products productSource
	events   eventSink
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds an order service with the provided dependencies.
func NewService(repo orderRepository, productSrc productSource, events eventSink, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if productSrc == nil {
		return nil, fmt.Errorf("product source required")
	}
	if events == nil {
		return nil, fmt.Errorf("event sink required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, products: productSrc, events: events, logg: logg, now: time.Now}, nil
}

// CheckoutItem references a product and quantity at checkout.
type CheckoutItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// CheckoutInput captures the checkout form. The payment collaborator has
// already settled funds; this core only records the purchase.
type CheckoutInput struct {
	CustomerEmail string
	CustomerPhone *string
	CustomerName  *string
	EventDate     *time.Time
	EventLocation *string
	EventType     *string
	Items         []CheckoutItem
	Tax           decimal.Decimal
	Shipping      decimal.Decimal
	Discount      decimal.Decimal
	Currency      *string
}

// Checkout snapshots the purchased products into an immutable item list
// and creates the order in pending. Prices are frozen here; later product
// edits never touch an order.
func (s *service) Checkout(ctx context.Context, principal *guard.Principal, input CheckoutInput) (*OrderDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.CustomerEmail))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid customer email is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	if input.Tax.IsNegative() || input.Shipping.IsNegative() || input.Discount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax, shipping, and discount cannot be negative")
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product id is required")
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve order products")
	}
	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make(types.OrderItems, 0, len(input.Items))
	for _, item := range input.Items {
		product, ok := byID[item.ProductID]
		if !ok || product.Status != enums.ProductStatusApproved || !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item references an unavailable product").
				WithDetails(map[string]any{"productId": item.ProductID})
		}
		items = append(items, types.OrderItem{
			ProductID: product.ID,
			VendorID:  product.VendorID,
			Name:      product.Name,
			Price:     product.BasePrice,
			Quantity:  item.Quantity,
		})
	}

	subtotal := items.Subtotal()
	total := subtotal.Add(input.Tax).Add(input.Shipping).Sub(input.Discount)
	if total.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds order value")
	}

	order := &models.Order{
		Items:         items,
		Subtotal:      subtotal,
		Tax:           input.Tax,
		Shipping:      input.Shipping,
		Discount:      input.Discount,
		Total:         total,
		Currency:      "USD",
		CustomerEmail: email,
		CustomerPhone: input.CustomerPhone,
		CustomerName:  input.CustomerName,
		EventDate:     input.EventDate,
		EventLocation: input.EventLocation,
		EventType:     input.EventType,
		Status:        enums.OrderStatusPending,
	}
	if input.Currency != nil {
		order.Currency = *input.Currency
	}
	if principal != nil {
		userID := principal.UserID
		order.UserID = &userID
	}

	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = s.newOrderNumber()
		err := s.repo.Create(ctx, order)
		if err == nil {
			return FromModel(order), nil
		}
		if !db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not derive a unique order number")
}

func (s *service) GetByID(ctx context.Context, principal *guard.Principal, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.MutateOrder(principal, order).Err(); err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

func (s *service) ListMine(ctx context.Context, principal *guard.Principal) ([]OrderDTO, error) {
	if principal == nil {
		return nil, guard.DecisionUnauthenticated.Err()
	}
	orders, err := s.repo.ListByUser(ctx, principal.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return FromModels(orders), nil
}

// Advance moves fulfillment strictly forward. Admin only; cancellation
// and refunds have their own entry points.
func (s *service) Advance(ctx context.Context, principal *guard.Principal, orderID uuid.UUID, target enums.OrderStatus) (*OrderDTO, error) {
	if err := guard.Admin(principal).Err(); err != nil {
		return nil, err
	}
	switch target {
	case enums.OrderStatusConfirmed, enums.OrderStatusProcessing, enums.OrderStatusCompleted:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "advance only moves fulfillment forward")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	dto, err := s.transition(ctx, order, target)
	if err != nil {
		return nil, err
	}
	if target == enums.OrderStatusCompleted {
		s.applyCompletionEvents(ctx, order)
	}
	return dto, nil
}

// Cancel aborts an order that has not completed. Customer or admin.
func (s *service) Cancel(ctx context.Context, principal *guard.Principal, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := guard.MutateOrder(principal, order).Err(); err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusCancelled && !lifecycle.OrderCancellable(order.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order cannot be cancelled from %s", order.Status))
	}
	return s.transition(ctx, order, enums.OrderStatusCancelled)
}

// Refund reverses a completed order. Admin only; the refund window
// itself is enforced by the payment collaborator.
func (s *service) Refund(ctx context.Context, principal *guard.Principal, orderID uuid.UUID) (*OrderDTO, error) {
	if err := guard.Admin(principal).Err(); err != nil {
		return nil, err
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	dto, err := s.transition(ctx, order, enums.OrderStatusRefunded)
	if err != nil {
		return nil, err
	}
	s.applyRefundEvents(ctx, order)
	return dto, nil
}

// applyCompletionEvents credits each vendor's revenue share and bumps
// per-product order counts. Event ids are deterministic per order, so a
// replayed completion cannot double-count.
func (s *service) applyCompletionEvents(ctx context.Context, order *models.Order) {
	seen := map[uuid.UUID]bool{}
	for _, item := range order.Items {
		s.applyEvent(ctx, aggregator.ApplyEventInput{
			EventID:    aggregator.OrderProductEventID(order.ID, item.ProductID),
			Kind:       enums.CounterEventOrder,
			TargetKind: enums.CounterTargetProduct,
			TargetID:   item.ProductID,
			Delta:      1,
		})
		if seen[item.VendorID] {
			continue
		}
		seen[item.VendorID] = true
		s.applyEvent(ctx, aggregator.ApplyEventInput{
			EventID:    aggregator.RevenueEventID(order.ID, item.VendorID),
			Kind:       enums.CounterEventRevenue,
			TargetKind: enums.CounterTargetVendor,
			TargetID:   item.VendorID,
			Amount:     order.Items.VendorShare(item.VendorID),
		})
	}
}

// applyRefundEvents debits each vendor's share with the negated amount.
func (s *service) applyRefundEvents(ctx context.Context, order *models.Order) {
	seen := map[uuid.UUID]bool{}
	for _, item := range order.Items {
		if seen[item.VendorID] {
			continue
		}
		seen[item.VendorID] = true
		s.applyEvent(ctx, aggregator.ApplyEventInput{
			EventID:    aggregator.RefundEventID(order.ID, item.VendorID),
			Kind:       enums.CounterEventRevenue,
			TargetKind: enums.CounterTargetVendor,
			TargetID:   item.VendorID,
			Amount:     order.Items.VendorShare(item.VendorID).Neg(),
		})
	}
}

func (s *service) transition(ctx context.Context, order *models.Order, target enums.OrderStatus) (*OrderDTO, error) {
	if order.Status == target {
		return FromModel(order), nil
	}
	if err := lifecycle.StepOrder(order.Status, target); err != nil {
		return nil, err
	}

	affected, err := s.repo.TransitionStatus(ctx, order.ID, order.Status, target, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition order status")
	}
	if affected == 0 {
		current, reloadErr := s.loadOrder(ctx, order.ID)
		if reloadErr == nil && current.Status == target {
			return FromModel(current), nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
	}
	order.Status = target
	return FromModel(order), nil
}

func (s *service) loadOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// newOrderNumber derives a public order number like WS-20260314-7F3A21.
func (s *service) newOrderNumber() string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("WS-%s-%s", s.now().UTC().Format("20060102"), suffix)
}

func (s *service) applyEvent(ctx context.Context, input aggregator.ApplyEventInput) {
	if err := s.events.ApplyEvent(ctx, input); err != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{"event_id": input.EventID})
		s.logg.Warn(lctx, "counter event deferred to reconciliation")
	}
}
