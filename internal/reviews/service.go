package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maxmagma/wedstay-backend/internal/guard"
	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
)

type reviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListPublishedByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error)
	ListPublishedByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Review, error)
	Update(ctx context.Context, review *models.Review) error
}

type productSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type vendorSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
}

type orderSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// Service exposes review operations.
type Service interface {
	Create(ctx context.Context, principal *guard.Principal, input CreateInput) (*ReviewDTO, error)
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error)
	ListForVendor(ctx context.Context, vendorID uuid.UUID) ([]ReviewDTO, error)
	Flag(ctx context.Context, principal *guard.Principal, reviewID uuid.UUID, reason string) (*ReviewDTO, error)
	Unflag(ctx context.Context, principal *guard.Principal, reviewID uuid.UUID) (*ReviewDTO, error)
}

type service struct {
	repo     reviewRepository
	products productSource
	vendors  vendorSource
	orders   orderSource
}

// NewService builds a review service with the provided dependencies.
func NewService(repo reviewRepository, productSrc productSource, vendorSrc vendorSource, orderSrc orderSource) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if productSrc == nil {
		return nil, fmt.Errorf("product source required")
	}
	if vendorSrc == nil {
		return nil, fmt.Errorf("vendor source required")
	}
	if orderSrc == nil {
		return nil, fmt.Errorf("order source required")
	}
	return &service{repo: repo, products: productSrc, vendors: vendorSrc, orders: orderSrc}, nil
}

// CreateInput captures a customer's review. At least one of ProductID or
// VendorID must be set; OrderID is optional and only used to establish
// the verified purchase mark.
type CreateInput struct {
	ProductID *uuid.UUID
	VendorID  *uuid.UUID
	OrderID   *uuid.UUID
	Rating    int
	Title     *string
	Content   *string
}

// Create records feedback. The verified purchase mark is granted only
// when the referenced order belongs to the reviewer and its snapshot
// contains the reviewed product.
func (s *service) Create(ctx context.Context, principal *guard.Principal, input CreateInput) (*ReviewDTO, error) {
	if principal == nil {
		return nil, guard.DecisionUnauthenticated.Err()
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if input.ProductID == nil && input.VendorID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a product or vendor reference is required")
	}

	review := &models.Review{
		UserID:      principal.UserID,
		Rating:      input.Rating,
		Title:       trimmed(input.Title),
		Content:     trimmed(input.Content),
		IsPublished: true,
	}

	if input.ProductID != nil {
		product, err := s.products.FindByID(ctx, *input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		review.ProductID = &product.ID
		// A product review always lands on the owning vendor's
		// aggregate as well.
		vendorID := product.VendorID
		review.VendorID = &vendorID
	}

	if input.VendorID != nil {
		vendor, err := s.vendors.FindByID(ctx, *input.VendorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
		}
		if review.VendorID != nil && *review.VendorID != vendor.ID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor does not own the reviewed product")
		}
		review.VendorID = &vendor.ID
	}

	if input.OrderID != nil {
		verified, err := s.verifyPurchase(ctx, principal, *input.OrderID, review.ProductID)
		if err != nil {
			return nil, err
		}
		review.OrderID = input.OrderID
		review.IsVerifiedPurchase = verified
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	return FromModel(review), nil
}

func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error) {
	reviews, err := s.repo.ListPublishedByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return FromModels(reviews), nil
}

func (s *service) ListForVendor(ctx context.Context, vendorID uuid.UUID) ([]ReviewDTO, error) {
	reviews, err := s.repo.ListPublishedByVendor(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return FromModels(reviews), nil
}

// Flag pulls a review from public view pending moderation. Admin only.
func (s *service) Flag(ctx context.Context, principal *guard.Principal, reviewID uuid.UUID, reason string) (*ReviewDTO, error) {
	if err := guard.Admin(principal).Err(); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a flag reason is required")
	}

	review, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	review.Flagged = true
	review.FlagReason = &reason
	review.IsPublished = false
	if err := s.repo.Update(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "flag review")
	}
	return FromModel(review), nil
}

// Unflag restores a flagged review. Admin only.
func (s *service) Unflag(ctx context.Context, principal *guard.Principal, reviewID uuid.UUID) (*ReviewDTO, error) {
	if err := guard.Admin(principal).Err(); err != nil {
		return nil, err
	}
	review, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	review.Flagged = false
	review.FlagReason = nil
	review.IsPublished = true
	if err := s.repo.Update(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unflag review")
	}
	return FromModel(review), nil
}

// verifyPurchase checks the order belongs to the reviewer and references
// the reviewed product. A mismatched order is an error, not a silent
// unverified review.
func (s *service) verifyPurchase(ctx context.Context, principal *guard.Principal, orderID uuid.UUID, productID *uuid.UUID) (bool, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID == nil || *order.UserID != principal.UserID {
		return false, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to this account")
	}
	if productID != nil && !order.Items.ContainsProduct(*productID) {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "order does not contain the reviewed product")
	}
	return true, nil
}

func (s *service) loadReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	return review, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	out := strings.TrimSpace(*value)
	if out == "" {
		return nil
	}
	return &out
}
