package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/maxmagma/wedstay-backend/internal/aggregator"
	"github.com/maxmagma/wedstay-backend/internal/guard"
	"github.com/maxmagma/wedstay-backend/internal/lifecycle"
	"github.com/maxmagma/wedstay-backend/internal/vendors"
	"github.com/maxmagma/wedstay-backend/pkg/db"
	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
	"github.com/maxmagma/wedstay-backend/pkg/pagination"
)

const maxHandleAttempts = 5

type productRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByHandle(ctx context.Context, handle string) (*models.Product, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Product, error)
	ListApproved(ctx context.Context, params pagination.Params) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.ProductStatus, extra map[string]any) (int64, error)
	DeleteInStatus(ctx context.Context, id uuid.UUID, statuses ...enums.ProductStatus) (int64, error)
}

type vendorSource interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Vendor, error)
}

type eventSink interface {
	ApplyEvent(ctx context.Context, input aggregator.ApplyEventInput) error
}

// Service exposes product operations.
type Service interface {
	Create(ctx context.Context, principal *guard.Principal, input CreateInput) (*ProductDTO, error)
	Update(ctx context.Context, principal *guard.Principal, productID uuid.UUID, input UpdateInput) (*ProductDTO, error)
	Submit(ctx context.Context, principal *guard.Principal, productID uuid.UUID) (*ProductDTO, error)
	Approve(ctx context.Context, principal *guard.Principal, productID uuid.UUID) (*ProductDTO, error)
	Reject(ctx context.Context, principal *guard.Principal, productID uuid.UUID, reason *string) (*ProductDTO, error)
	Archive(ctx context.Context, principal *guard.Principal, productID uuid.UUID) (*ProductDTO, error)
	Delete(ctx context.Context, principal *guard.Principal, productID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	GetPublicByHandle(ctx context.Context, handle string) (*ProductDTO, error)
	ListMine(ctx context.Context, principal *guard.Principal) ([]ProductDTO, error)
	ListPublic(ctx context.Context, params pagination.Params) ([]ProductDTO, error)
}

type service struct {
	repo    productRepository
	vendors vendorSource
	events  eventSink
	logg    *logger.Logger
}

// NewService builds a product service with the provided dependencies.
func NewService(repo productRepository, vendorSrc vendorSource, events eventSink, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
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
	return &service{repo: repo, vendors: vendorSrc, events: events, logg: logg}, nil
}

// CreateInput captures creation-time product fields. Status always starts
// at draft; handle is derived once and never editable.
type CreateInput struct {
	Name           string
	Description    *string
	Category       *string
	Subcategory    *string
	BasePrice      decimal.Decimal
	CompareAtPrice *decimal.Decimal
	PriceType      *string
	Currency       *string
	Quantity       *int
	TrackInventory *bool
	MinimumOrder   *int
	Images         []string
	PrimaryImage   *string
	StyleTags      []string
}

// UpdateInput captures the vendor-editable fields. VendorID and Handle are
// deliberately absent: both are immutable after creation.
type UpdateInput struct {
	Name           *string
	Description    *string
	Category       *string
	Subcategory    *string
	BasePrice      *decimal.Decimal
	CompareAtPrice *decimal.Decimal
	PriceType      *string
	Currency       *string
	Quantity       *int
	TrackInventory *bool
	MinimumOrder   *int
	Images         *[]string
	PrimaryImage   *string
	StyleTags      *[]string
	IsActive       *bool
}

// Create adds a draft listing for the principal's approved vendor.
func (s *service) Create(ctx context.Context, principal *guard.Principal, input CreateInput) (*ProductDTO, error) {
	vendor, err := s.loadOwnVendor(ctx, principal)
	if err != nil {
		return nil, err
	}
	if vendor.Status != enums.VendorStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor is not approved to list products")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	slug := vendors.Slugify(name)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name yields an empty slug")
	}

	product := &models.Product{
		VendorID:     vendor.ID,
		Name:         name,
		Slug:         slug,
		Description:  input.Description,
		Category:     input.Category,
		Subcategory:  input.Subcategory,
		BasePrice:    input.BasePrice,
		PriceType:    "fixed",
		Currency:     "USD",
		MinimumOrder: 1,
		Images:       pq.StringArray(input.Images),
		PrimaryImage: input.PrimaryImage,
		StyleTags:    pq.StringArray(input.StyleTags),
		Status:       enums.ProductStatusDraft,
		IsActive:     true,
	}
	if input.CompareAtPrice != nil {
		product.CompareAtPrice = decimal.NewNullDecimal(*input.CompareAtPrice)
	}
	if input.PriceType != nil {
		product.PriceType = *input.PriceType
	}
	if input.Currency != nil {
		product.Currency = *input.Currency
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}
	if input.TrackInventory != nil {
		product.TrackInventory = *input.TrackInventory
	}
	if input.MinimumOrder != nil {
		product.MinimumOrder = *input.MinimumOrder
	}

	for attempt := 0; attempt < maxHandleAttempts; attempt++ {
		product.Handle = fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8])
		err := s.repo.Create(ctx, product)
		if err == nil {
			s.applyEvent(ctx, aggregator.ApplyEventInput{
				EventID:    aggregator.ProductCreateEventID(product.ID),
				Kind:       enums.CounterEventProductCount,
				TargetKind: enums.CounterTargetVendor,
				TargetID:   vendor.ID,
				Delta:      1,
			})
			return FromModel(product), nil
		}
		if !db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not derive a unique handle")
}

// Update mutates editable listing fields. A rejected product stays
// rejected until the vendor explicitly resubmits.
func (s *service) Update(ctx context.Context, principal *guard.Principal, productID uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	product, _, err := s.loadGuarded(ctx, principal, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = name
		product.Slug = vendors.Slugify(name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		product.Category = input.Category
	}
	if input.Subcategory != nil {
		product.Subcategory = input.Subcategory
	}
	if input.BasePrice != nil {
		product.BasePrice = *input.BasePrice
	}
	if input.CompareAtPrice != nil {
		product.CompareAtPrice = decimal.NewNullDecimal(*input.CompareAtPrice)
	}
	if input.PriceType != nil {
		product.PriceType = *input.PriceType
	}
	if input.Currency != nil {
		product.Currency = *input.Currency
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}
	if input.TrackInventory != nil {
		product.TrackInventory = *input.TrackInventory
	}
	if input.MinimumOrder != nil {
		product.MinimumOrder = *input.MinimumOrder
	}
	if input.Images != nil {
		product.Images = pq.StringArray(*input.Images)
	}
	if input.PrimaryImage != nil {
		product.PrimaryImage = input.PrimaryImage
	}
	if input.StyleTags != nil {
		product.StyleTags = pq.StringArray(*input.StyleTags)
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return FromModel(product), nil
}

// Submit moves a draft or rejected listing into the review queue. The
// listing must carry name, description, category, and a positive base price.
func (s *service) Submit(ctx context.Context, principal *guard.Principal, productID uuid.UUID) (*ProductDTO, error) {
	product, _, err := s.loadGuarded(ctx, principal, productID)
	if err != nil {
		return nil, err
	}

	var missing []string
	if strings.TrimSpace(product.Name) == "" {
		missing = append(missing, "name")
	}
	if product.Description == nil || strings.TrimSpace(*product.Description) == "" {
		missing = append(missing, "description")
	}
	if product.Category == nil || strings.TrimSpace(*product.Category) == "" {
		missing = append(missing, "category")
	}
	if !product.BasePrice.IsPositive() {
		missing = append(missing, "basePrice")
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing is incomplete").
			WithDetails(map[string]any{"missing": missing})
	}

	return s.transition(ctx, product, enums.ProductStatusPending, map[string]any{
		"rejection_reason": nil,
	})
}

// Approve publishes a pending listing. Admin only.
func (s *service) Approve(ctx context.Context, principal *guard.Principal, productID uuid.UUID) (*ProductDTO, error) {
	if err := guard.Admin(principal).Err(); err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	extra := map[string]any{"rejection_reason": nil}
	if product.PublishedAt == nil {
		extra["published_at"] = time.Now().UTC()
	}
	return s.transition(ctx, product, enums.ProductStatusApproved, extra)
}

// Reject sends a pending listing back to its vendor. Admin only; the
// reason is optional for products.
func (s *service) Reject(ctx context.Context, principal *guard.Principal, productID uuid.UUID, reason *string) (*ProductDTO, error) {
	if err := guard.Admin(principal).Err(); err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	extra := map[string]any{"rejection_reason": nil}
	if reason != nil && strings.TrimSpace(*reason) != "" {
		extra["rejection_reason"] = strings.TrimSpace(*reason)
	}
	return s.transition(ctx, product, enums.ProductStatusRejected, extra)
}

// Archive retires an approved listing. Vendor or admin.
func (s *service) Archive(ctx context.Context, principal *guard.Principal, productID uuid.UUID) (*ProductDTO, error) {
	product, _, err := s.loadGuarded(ctx, principal, productID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, product, enums.ProductStatusArchived, nil)
}

// Delete force-removes a listing, allowed only from draft or archived.
func (s *service) Delete(ctx context.Context, principal *guard.Principal, productID uuid.UUID) error {
	product, _, err := s.loadGuarded(ctx, principal, productID)
	if err != nil {
		return err
	}

	affected, err := s.repo.DeleteInStatus(ctx, productID, enums.ProductStatusDraft, enums.ProductStatusArchived)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only draft or archived products can be deleted")
	}
	s.applyEvent(ctx, aggregator.ApplyEventInput{
		EventID:    aggregator.ProductDeleteEventID(productID),
		Kind:       enums.CounterEventProductCount,
		TargetKind: enums.CounterTargetVendor,
		TargetID:   product.VendorID,
		Delta:      -1,
	})
	return nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

// GetPublicByHandle resolves a storefront listing. Anything not approved
// and active reads as absent to the public surface.
func (s *service) GetPublicByHandle(ctx context.Context, handle string) (*ProductDTO, error) {
	product, err := s.repo.FindByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.Status != enums.ProductStatusApproved || !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return FromModel(product), nil
}

func (s *service) ListMine(ctx context.Context, principal *guard.Principal) ([]ProductDTO, error) {
	vendor, err := s.loadOwnVendor(ctx, principal)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ListByVendor(ctx, vendor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return FromModels(products), nil
}

func (s *service) ListPublic(ctx context.Context, params pagination.Params) ([]ProductDTO, error) {
	products, err := s.repo.ListApproved(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	limit := pagination.NormalizeLimit(params.Limit)
	if len(products) > limit {
		products = products[:limit]
	}
	return FromModels(products), nil
}

func (s *service) transition(ctx context.Context, product *models.Product, target enums.ProductStatus, extra map[string]any) (*ProductDTO, error) {
	if product.Status == target {
		return FromModel(product), nil
	}
	if err := lifecycle.StepProduct(product.Status, target); err != nil {
		return nil, err
	}

	affected, err := s.repo.TransitionStatus(ctx, product.ID, product.Status, target, extra)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition product status")
	}
	if affected == 0 {
		current, reloadErr := s.loadProduct(ctx, product.ID)
		if reloadErr == nil && current.Status == target {
			return FromModel(current), nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product status changed concurrently")
	}
	return s.GetByID(ctx, product.ID)
}

func (s *service) applyEvent(ctx context.Context, input aggregator.ApplyEventInput) {
	if err := s.events.ApplyEvent(ctx, input); err != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{"event_id": input.EventID})
		s.logg.Warn(lctx, "counter event deferred to reconciliation")
	}
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
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

// loadGuarded resolves the product and the principal's vendor, then runs
// the ownership check. Admins pass without owning a vendor.
func (s *service) loadGuarded(ctx context.Context, principal *guard.Principal, productID uuid.UUID) (*models.Product, uuid.UUID, error) {
	if principal == nil {
		return nil, uuid.Nil, guard.DecisionUnauthenticated.Err()
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, uuid.Nil, err
	}

	ownedVendorID := uuid.Nil
	if principal.Role != enums.UserRoleAdmin {
		vendor, err := s.vendors.FindByUserID(ctx, principal.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
		}
		if vendor != nil {
			ownedVendorID = vendor.ID
		}
	}

	if err := guard.MutateProduct(principal, ownedVendorID, product).Err(); err != nil {
		return nil, uuid.Nil, err
	}
	return product, ownedVendorID, nil
}
