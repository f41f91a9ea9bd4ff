package aggregator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/maxmagma/wedstay-backend/pkg/db"
	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
	"github.com/maxmagma/wedstay-backend/pkg/metrics"
)

// idempotencyTTL bounds how long a processed event id is cached in Redis.
// The counter_events unique index remains authoritative after expiry.
const idempotencyTTL = 24 * time.Hour

const idempotencyScope = "counter-event"

// ApplyEventInput describes one counter event. EventID must be derived
// deterministically from the business fact so retries collapse into one
// application.
type ApplyEventInput struct {
	EventID    string
	Kind       enums.CounterEventKind
	TargetKind enums.CounterTargetKind
	TargetID   uuid.UUID
	Delta      int
	Amount     decimal.Decimal
}

// Service applies counter events at most once and repairs drift from the
// durable sources of truth.
type Service interface {
	ApplyEvent(ctx context.Context, input ApplyEventInput) error
	Reconcile(ctx context.Context) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type counterRepository interface {
	InsertEventTx(tx *gorm.DB, event *models.CounterEvent) error
	IncrementProductCounterTx(tx *gorm.DB, productID uuid.UUID, column string, delta int) error
	IncrementVendorCounterTx(tx *gorm.DB, vendorID uuid.UUID, column string, delta int) error
	AddVendorRevenueTx(tx *gorm.DB, vendorID uuid.UUID, amount decimal.Decimal) error
	ReconcileProductCounters(ctx context.Context) error
	ReconcileVendorProducts(ctx context.Context) error
	ReconcileVendorInquiries(ctx context.Context) error
	ReconcileVendorRevenue(ctx context.Context) error
	ReconcileVendorRatings(ctx context.Context) error
}

type idempotencyStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
	Del(ctx context.Context, keys ...string) error
}

type service struct {
	store   txRunner
	repo    counterRepository
	idem    idempotencyStore
	metrics *metrics.CounterEventMetrics
	logg    *logger.Logger
}

// NewService wires the aggregator. The idempotency store may be nil, in
// which case every event pays the database round trip.
func NewService(store txRunner, repo counterRepository, idem idempotencyStore, m *metrics.CounterEventMetrics, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{store: store, repo: repo, idem: idem, metrics: m, logg: logg}, nil
}

func (s *service) ApplyEvent(ctx context.Context, input ApplyEventInput) error {
	if err := validateInput(input); err != nil {
		return err
	}

	var reservedKey string
	if s.idem != nil {
		key := s.idem.IdempotencyKey(idempotencyScope, input.EventID)
		fresh, err := s.idem.SetNX(ctx, key, "1", idempotencyTTL)
		if err != nil {
			// Redis is only the fast path. Fall through to the
			// unique index and let it arbitrate.
			lctx := s.logg.WithFields(ctx, map[string]any{"event_id": input.EventID})
			s.logg.Warn(lctx, "idempotency reservation unavailable, deferring to database")
		} else if !fresh {
			s.metrics.IncDuplicate(input.Kind.String())
			return nil
		} else {
			reservedKey = key
		}
	}

	err := s.store.WithTx(ctx, func(tx *gorm.DB) error {
		event := &models.CounterEvent{
			EventID:    input.EventID,
			Kind:       input.Kind,
			TargetKind: input.TargetKind,
			TargetID:   input.TargetID,
			Delta:      input.Delta,
		}
		if input.Kind == enums.CounterEventRevenue {
			event.Amount = decimal.NewNullDecimal(input.Amount)
		}
		if err := s.repo.InsertEventTx(tx, event); err != nil {
			return err
		}
		return s.applyTx(tx, input)
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			s.metrics.IncDuplicate(input.Kind.String())
			return nil
		}
		// Release the reservation so a retry is not swallowed by a
		// Redis entry for an event that never landed.
		if reservedKey != "" {
			if delErr := s.idem.Del(ctx, reservedKey); delErr != nil {
				lctx := s.logg.WithFields(ctx, map[string]any{"event_id": input.EventID})
				s.logg.Warn(lctx, "failed to release idempotency reservation")
			}
		}
		s.metrics.IncFailure(input.Kind.String())
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to apply counter event")
	}

	s.metrics.IncApplied(input.Kind.String())
	return nil
}

func (s *service) applyTx(tx *gorm.DB, input ApplyEventInput) error {
	if input.TargetKind == enums.CounterTargetVendor {
		switch input.Kind {
		case enums.CounterEventRevenue:
			return s.repo.AddVendorRevenueTx(tx, input.TargetID, input.Amount)
		case enums.CounterEventInquiry:
			return s.repo.IncrementVendorCounterTx(tx, input.TargetID, "total_inquiries", input.Delta)
		case enums.CounterEventProductCount:
			return s.repo.IncrementVendorCounterTx(tx, input.TargetID, "total_products", input.Delta)
		}
		return fmt.Errorf("kind %s cannot target a vendor", input.Kind)
	}

	column, ok := map[enums.CounterEventKind]string{
		enums.CounterEventView:    "views",
		enums.CounterEventInquiry: "inquiries",
		enums.CounterEventCartAdd: "cart_adds",
		enums.CounterEventOrder:   "orders",
	}[input.Kind]
	if !ok {
		return fmt.Errorf("kind %s cannot target a product", input.Kind)
	}
	return s.repo.IncrementProductCounterTx(tx, input.TargetID, column, input.Delta)
}

// Reconcile recomputes every denormalized counter from its durable
// source. Each pass runs independently so one failure does not abort
// the rest.
func (s *service) Reconcile(ctx context.Context) error {
	passes := []struct {
		name string
		run  func(context.Context) error
	}{
		{"product_counters", s.repo.ReconcileProductCounters},
		{"vendor_products", s.repo.ReconcileVendorProducts},
		{"vendor_inquiries", s.repo.ReconcileVendorInquiries},
		{"vendor_revenue", s.repo.ReconcileVendorRevenue},
		{"vendor_ratings", s.repo.ReconcileVendorRatings},
	}

	var errs error
	var failed []string
	for _, pass := range passes {
		if err := pass.run(ctx); err != nil {
			s.logg.Error(s.logg.WithFields(ctx, map[string]any{"pass": pass.name}),
				"reconciliation pass failed", err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", pass.name, err))
			failed = append(failed, pass.name)
		}
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errs,
			fmt.Sprintf("reconciliation incomplete: %s", strings.Join(failed, ", ")))
	}
	return nil
}

func validateInput(input ApplyEventInput) error {
	if strings.TrimSpace(input.EventID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	if !input.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown counter event kind")
	}
	if !input.TargetKind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown counter target kind")
	}
	if input.TargetID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "target id is required")
	}
	if input.Kind == enums.CounterEventProductCount && input.TargetKind != enums.CounterTargetVendor {
		return pkgerrors.New(pkgerrors.CodeValidation, "product count events target vendors")
	}
	if input.Kind == enums.CounterEventRevenue {
		if input.TargetKind != enums.CounterTargetVendor {
			return pkgerrors.New(pkgerrors.CodeValidation, "revenue events target vendors")
		}
		if input.Amount.IsZero() {
			return pkgerrors.New(pkgerrors.CodeValidation, "revenue events require a non-zero amount")
		}
	} else if input.Delta == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}
	return nil
}

// ViewEventID builds the deterministic id for one product view in a
// client-supplied dedupe window.
func ViewEventID(productID uuid.UUID, dedupeKey string) string {
	return fmt.Sprintf("view:product:%s:%s", productID, dedupeKey)
}

// CartAddEventID dedupes cart adds per session.
func CartAddEventID(productID uuid.UUID, sessionKey string) string {
	return fmt.Sprintf("cart_add:product:%s:%s", productID, sessionKey)
}

// InquiryProductEventID is applied once per product an inquiry references.
func InquiryProductEventID(inquiryID, productID uuid.UUID) string {
	return fmt.Sprintf("inquiry:%s:product:%s", inquiryID, productID)
}

// InquiryVendorEventID is applied once per vendor an inquiry references.
func InquiryVendorEventID(inquiryID, vendorID uuid.UUID) string {
	return fmt.Sprintf("inquiry:%s:vendor:%s", inquiryID, vendorID)
}

// OrderProductEventID is applied once per product when an order completes.
func OrderProductEventID(orderID, productID uuid.UUID) string {
	return fmt.Sprintf("order:%s:product:%s", orderID, productID)
}

// RevenueEventID is applied once per vendor when an order completes.
func RevenueEventID(orderID, vendorID uuid.UUID) string {
	return fmt.Sprintf("revenue:order:%s:vendor:%s", orderID, vendorID)
}

// RefundEventID reverses a vendor's revenue share when an order refunds.
func RefundEventID(orderID, vendorID uuid.UUID) string {
	return fmt.Sprintf("refund:order:%s:vendor:%s", orderID, vendorID)
}

// ProductCreateEventID is applied once when a listing is created.
func ProductCreateEventID(productID uuid.UUID) string {
	return fmt.Sprintf("product_count:create:%s", productID)
}

// ProductDeleteEventID is applied once when a listing is force-deleted.
func ProductDeleteEventID(productID uuid.UUID) string {
	return fmt.Sprintf("product_count:delete:%s", productID)
}
