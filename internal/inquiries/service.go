package inquiries

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
	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
	"github.com/maxmagma/wedstay-backend/pkg/types"
)

type inquiryRepository interface {
	Create(ctx context.Context, inquiry *models.Inquiry) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Inquiry, error)
	ListForVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Inquiry, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.InquiryStatus, extra map[string]any) (int64, error)
}

type productSource interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type vendorSource interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Vendor, error)
}

type eventSink interface {
	ApplyEvent(ctx context.Context, input aggregator.ApplyEventInput) error
}

// Service exposes inquiry operations.
type Service interface {
	Submit(ctx context.Context, principal *guard.Principal, input SubmitInput) (*InquiryDTO, error)
	GetByID(ctx context.Context, principal *guard.Principal, id uuid.UUID) (*InquiryDTO, error)
	ListMine(ctx context.Context, principal *guard.Principal) ([]InquiryDTO, error)
	ListForVendor(ctx context.Context, principal *guard.Principal) ([]InquiryDTO, error)
	Respond(ctx context.Context, principal *guard.Principal, inquiryID uuid.UUID, input RespondInput) (*InquiryDTO, error)
	Book(ctx context.Context, principal *guard.Principal, inquiryID uuid.UUID) (*InquiryDTO, error)
	Cancel(ctx context.Context, principal *guard.Principal, inquiryID uuid.UUID) (*InquiryDTO, error)
	Complete(ctx context.Context, principal *guard.Principal, inquiryID uuid.UUID) (*InquiryDTO, error)
}

type service struct {
	repo     inquiryRepository
	products productSource
	vendors  vendorSource
	events   eventSink
	logg     *logger.Logger
}

// NewService builds an inquiry service with the provided dependencies.
func NewService(repo inquiryRepository, productSrc productSource, vendorSrc vendorSource, events eventSink, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inquiry repository required")
	}
	if productSrc == nil {
		return nil, fmt.Errorf("product source required")
	}
	if vendorSrc == nil {
		return nil, fmt.Errorf("vendor source required")
	}
	if events == nil {
		return nil, fmt.Errorf("event sink required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, products: productSrc, vendors: vendorSrc, events: events, logg: logg}, nil
}

// SubmitInput captures the customer-facing inquiry form. Guests submit
// without a principal; contact fields are always required.
type SubmitInput struct {
	FullName      string
	Email         string
	Phone         *string
	EventDate     *time.Time
	EventType     *string
	VenueName     *string
	VenueLocation *string
	GuestCount    *int
	Items         []types.InquiryItem
	CustomerNotes *string
	Source        *string
}

// RespondInput is one vendor's quote on an inquiry.
type RespondInput struct {
	QuotedPrice decimal.Decimal
	Message     string
}

// Submit validates the item references, prices the request, and creates
// the inquiry in pending. Counter events are applied after the row lands;
// a failed event is repaired by the next reconciliation pass.
func (s *service) Submit(ctx context.Context, principal *guard.Principal, input SubmitInput) (*InquiryDTO, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if fullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one product is required")
	}

	items := make(types.InquiryItems, 0, len(input.Items))
	productIDs := make([]uuid.UUID, 0, len(input.Items))
	seen := map[uuid.UUID]bool{}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product id is required")
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
		if seen[item.ProductID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in items")
		}
		seen[item.ProductID] = true
		items = append(items, item)
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve inquiry products")
	}
	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	total := decimal.Zero
	vendorIDs := make([]uuid.UUID, 0, len(products))
	seenVendor := map[uuid.UUID]bool{}
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok || product.Status != enums.ProductStatusApproved {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item references an unavailable product").
				WithDetails(map[string]any{"productId": item.ProductID})
		}
		total = total.Add(product.BasePrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		if !seenVendor[product.VendorID] {
			seenVendor[product.VendorID] = true
			vendorIDs = append(vendorIDs, product.VendorID)
		}
	}

	inquiry := &models.Inquiry{
		FullName:      fullName,
		Email:         email,
		Phone:         input.Phone,
		EventDate:     input.EventDate,
		EventType:     input.EventType,
		VenueName:     input.VenueName,
		VenueLocation: input.VenueLocation,
		GuestCount:    input.GuestCount,
		Items:         items,
		TotalValue:    total,
		Status:        enums.InquiryStatusPending,
		CustomerNotes: input.CustomerNotes,
		Source:        input.Source,
	}
	if principal != nil {
		userID := principal.UserID
		inquiry.UserID = &userID
	}

	if err := s.repo.Create(ctx, inquiry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inquiry")
	}

	for _, productID := range productIDs {
		s.applyEvent(ctx, aggregator.ApplyEventInput{
			EventID:    aggregator.InquiryProductEventID(inquiry.ID, productID),
			Kind:       enums.CounterEventInquiry,
			TargetKind: enums.CounterTargetProduct,
			TargetID:   productID,
			Delta:      1,
		})
	}
	for _, vendorID := range vendorIDs {
		s.applyEvent(ctx, aggregator.ApplyEventInput{
			EventID:    aggregator.InquiryVendorEventID(inquiry.ID, vendorID),
			Kind:       enums.CounterEventInquiry,
			TargetKind: enums.CounterTargetVendor,
			TargetID:   vendorID,
			Delta:      1,
		})
	}

	return FromModel(inquiry), nil
}

func (s *service) GetByID(ctx context.Context, principal *guard.Principal, id uuid.UUID) (*InquiryDTO, error) {
	inquiry, err := s.loadInquiry(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, principal, inquiry); err != nil {
		return nil, err
	}
	return FromModel(inquiry), nil
}

func (s *service) ListMine(ctx context.Context, principal *guard.Principal) ([]InquiryDTO, error) {
	if principal == nil {
		return nil, guard.DecisionUnauthenticated.Err()
	}
	inquiries, err := s.repo.ListByUser(ctx, principal.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inquiries")
	}
	return FromModels(inquiries), nil
}

// ListForVendor returns the inquiries referencing any product owned by
// the principal's vendor.
func (s *service) ListForVendor(ctx context.Context, principal *guard.Principal) ([]InquiryDTO, error) {
	vendor, err := s.loadOwnVendor(ctx, principal)
	if err != nil {
		return nil, err
	}
	inquiries, err := s.repo.ListForVendor(ctx, vendor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor inquiries")
	}
	return FromModels(inquiries), nil
}

// Respond appends a quote to the inquiry's response history. Only a
// vendor whose product is referenced in the items may quote; a first
// response moves the inquiry from pending to quoted, later responses
// leave the status alone.
func (s *service) Respond(ctx context.Context, principal *guard.Principal, inquiryID uuid.UUID, input RespondInput) (*InquiryDTO, error) {
	if principal == nil {
		return nil, guard.DecisionUnauthenticated.Err()
	}
	if !input.QuotedPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quoted price must be positive")
	}

	inquiry, err := s.loadInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}

	itemVendorIDs, err := s.resolveItemVendors(ctx, inquiry)
	if err != nil {
		return nil, err
	}
	ownedVendorID, err := s.resolveOwnedVendorID(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := guard.RespondToInquiry(principal, ownedVendorID, itemVendorIDs).Err(); err != nil {
		return nil, err
	}

	if inquiry.Status != enums.InquiryStatusPending && inquiry.Status != enums.InquiryStatusQuoted {
		if err := lifecycle.StepInquiry(inquiry.Status, enums.InquiryStatusQuoted); err != nil {
			return nil, err
		}
	}

	if ownedVendorID != uuid.Nil && inquiry.VendorResponses.HasVendor(ownedVendorID) {
		lctx := s.logg.WithFields(ctx, map[string]any{"inquiry_id": inquiry.ID, "vendor_id": ownedVendorID})
		s.logg.Info(lctx, "vendor revising an earlier quote")
	}

	responses := append(append(types.VendorResponses(nil), inquiry.VendorResponses...), types.VendorResponse{
		VendorID:    ownedVendorID,
		QuotedPrice: input.QuotedPrice,
		Message:     strings.TrimSpace(input.Message),
		RespondedAt: time.Now().UTC(),
	})

	// The append rides on the status predicate, so a concurrent writer
	// cannot silently drop a quote.
	affected, err := s.repo.TransitionStatus(ctx, inquiry.ID, inquiry.Status, enums.InquiryStatusQuoted, map[string]any{
		"vendor_responses": responses,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record vendor response")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "inquiry changed concurrently")
	}
	return s.reload(ctx, inquiry.ID)
}

// Book confirms a quoted inquiry. Customer or admin.
func (s *service) Book(ctx context.Context, principal *guard.Principal, inquiryID uuid.UUID) (*InquiryDTO, error) {
	inquiry, err := s.loadInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if err := guard.MutateInquiry(principal, inquiry).Err(); err != nil {
		return nil, err
	}
	return s.transition(ctx, inquiry, enums.InquiryStatusBooked)
}

// Cancel closes an inquiry before it books. Customer or admin.
func (s *service) Cancel(ctx context.Context, principal *guard.Principal, inquiryID uuid.UUID) (*InquiryDTO, error) {
	inquiry, err := s.loadInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if err := guard.MutateInquiry(principal, inquiry).Err(); err != nil {
		return nil, err
	}
	return s.transition(ctx, inquiry, enums.InquiryStatusCancelled)
}

// Complete closes a booked inquiry after the event. Admin only.
func (s *service) Complete(ctx context.Context, principal *guard.Principal, inquiryID uuid.UUID) (*InquiryDTO, error) {
	if err := guard.Admin(principal).Err(); err != nil {
		return nil, err
	}
	inquiry, err := s.loadInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, inquiry, enums.InquiryStatusCompleted)
}

func (s *service) transition(ctx context.Context, inquiry *models.Inquiry, target enums.InquiryStatus) (*InquiryDTO, error) {
	if inquiry.Status == target {
		return FromModel(inquiry), nil
	}
	if err := lifecycle.StepInquiry(inquiry.Status, target); err != nil {
		return nil, err
	}

	affected, err := s.repo.TransitionStatus(ctx, inquiry.ID, inquiry.Status, target, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition inquiry status")
	}
	if affected == 0 {
		current, reloadErr := s.loadInquiry(ctx, inquiry.ID)
		if reloadErr == nil && current.Status == target {
			return FromModel(current), nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "inquiry status changed concurrently")
	}
	return s.reload(ctx, inquiry.ID)
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*InquiryDTO, error) {
	inquiry, err := s.loadInquiry(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(inquiry), nil
}

func (s *service) loadInquiry(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	inquiry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inquiry")
	}
	return inquiry, nil
}

func (s *service) loadOwnVendor(ctx context.Context, principal *guard.Principal) (*models.Vendor, error) {
	if principal == nil {
		return nil, guard.DecisionUnauthenticated.Err()
	}
	vendor, err := s.vendors.FindByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no vendor for this account")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	return vendor, nil
}

func (s *service) resolveOwnedVendorID(ctx context.Context, principal *guard.Principal) (uuid.UUID, error) {
	if principal == nil || principal.Role == enums.UserRoleAdmin {
		return uuid.Nil, nil
	}
	vendor, err := s.vendors.FindByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, nil
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	return vendor.ID, nil
}

// resolveItemVendors maps the inquiry's product references to the distinct
// set of vendors that own them.
func (s *service) resolveItemVendors(ctx context.Context, inquiry *models.Inquiry) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(inquiry.Items))
	for _, item := range inquiry.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve inquiry products")
	}
	vendorIDs := make([]uuid.UUID, 0, len(products))
	seen := map[uuid.UUID]bool{}
	for _, product := range products {
		if !seen[product.VendorID] {
			seen[product.VendorID] = true
			vendorIDs = append(vendorIDs, product.VendorID)
		}
	}
	return vendorIDs, nil
}

func (s *service) authorizeRead(ctx context.Context, principal *guard.Principal, inquiry *models.Inquiry) error {
	if guard.MutateInquiry(principal, inquiry).Allowed() {
		return nil
	}
	if principal == nil {
		return guard.DecisionUnauthenticated.Err()
	}
	itemVendorIDs, err := s.resolveItemVendors(ctx, inquiry)
	if err != nil {
		return err
	}
	ownedVendorID, err := s.resolveOwnedVendorID(ctx, principal)
	if err != nil {
		return err
	}
	return guard.RespondToInquiry(principal, ownedVendorID, itemVendorIDs).Err()
}

func (s *service) applyEvent(ctx context.Context, input aggregator.ApplyEventInput) {
	if err := s.events.ApplyEvent(ctx, input); err != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{"event_id": input.EventID})
		s.logg.Warn(lctx, "counter event deferred to reconciliation")
	}
}
