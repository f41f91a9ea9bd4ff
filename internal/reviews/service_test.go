package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/maxmagma/wedstay-backend/internal/guard"
	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
	"github.com/maxmagma/wedstay-backend/pkg/types"
)

type stubReviewRepo struct {
	byID map[uuid.UUID]*models.Review
}

func newStubReviewRepo() *stubReviewRepo {
	return &stubReviewRepo{byID: map[uuid.UUID]*models.Review{}}
}

func (s *stubReviewRepo) Create(_ context.Context, review *models.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	clone := *review
	s.byID[review.ID] = &clone
	return nil
}

func (s *stubReviewRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Review, error) {
	review, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *review
	return &clone, nil
}

func (s *stubReviewRepo) ListPublishedByProduct(_ context.Context, productID uuid.UUID) ([]models.Review, error) {
	var out []models.Review
	for _, review := range s.byID {
		if review.ProductID != nil && *review.ProductID == productID && review.IsPublished {
			out = append(out, *review)
		}
	}
	return out, nil
}

func (s *stubReviewRepo) ListPublishedByVendor(_ context.Context, vendorID uuid.UUID) ([]models.Review, error) {
	var out []models.Review
	for _, review := range s.byID {
		if review.VendorID != nil && *review.VendorID == vendorID && review.IsPublished {
			out = append(out, *review)
		}
	}
	return out, nil
}

func (s *stubReviewRepo) Update(_ context.Context, review *models.Review) error {
	clone := *review
	s.byID[review.ID] = &clone
	return nil
}

type stubProductSource struct {
	byID map[uuid.UUID]*models.Product
}

func (s *stubProductSource) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

type stubVendorSource struct {
	byID map[uuid.UUID]*models.Vendor
}

func (s *stubVendorSource) FindByID(_ context.Context, id uuid.UUID) (*models.Vendor, error) {
	vendor, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return vendor, nil
}

type stubOrderSource struct {
	byID map[uuid.UUID]*models.Order
}

func (s *stubOrderSource) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

type fixture struct {
	svc      Service
	repo     *stubReviewRepo
	products *stubProductSource
	vendors  *stubVendorSource
	orders   *stubOrderSource
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newStubReviewRepo()
	products := &stubProductSource{byID: map[uuid.UUID]*models.Product{}}
	vendors := &stubVendorSource{byID: map[uuid.UUID]*models.Vendor{}}
	orders := &stubOrderSource{byID: map[uuid.UUID]*models.Order{}}
	svc, err := NewService(repo, products, vendors, orders)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &fixture{svc: svc, repo: repo, products: products, vendors: vendors, orders: orders}
}

func (f *fixture) addProduct(vendorID uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.products.byID[id] = &models.Product{ID: id, VendorID: vendorID, Name: "Gold Candelabra", Status: enums.ProductStatusApproved}
	return id
}

func (f *fixture) addOrder(userID *uuid.UUID, productID, vendorID uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.orders.byID[id] = &models.Order{
		ID:     id,
		UserID: userID,
		Items: types.OrderItems{
			{ProductID: productID, VendorID: vendorID, Price: decimal.NewFromInt(100), Quantity: 1},
		},
		Status: enums.OrderStatusCompleted,
	}
	return id
}

func customer() *guard.Principal {
	return &guard.Principal{UserID: uuid.New(), Role: enums.UserRoleCustomer}
}

func TestCreateRequiresPrincipalAndValidRating(t *testing.T) {
	f := newFixture(t)
	vendorID := uuid.New()
	productID := f.addProduct(vendorID)

	_, err := f.svc.Create(context.Background(), nil, CreateInput{ProductID: &productID, Rating: 5})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}

	for _, rating := range []int{0, 6, -1} {
		_, err := f.svc.Create(context.Background(), customer(), CreateInput{ProductID: &productID, Rating: rating})
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Fatalf("rating %d: expected VALIDATION, got %v", rating, err)
		}
	}

	_, err = f.svc.Create(context.Background(), customer(), CreateInput{Rating: 4})
	appErr = pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION without references, got %v", err)
	}
}

func TestProductReviewLandsOnOwningVendor(t *testing.T) {
	f := newFixture(t)
	vendorID := uuid.New()
	productID := f.addProduct(vendorID)

	dto, err := f.svc.Create(context.Background(), customer(), CreateInput{ProductID: &productID, Rating: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.VendorID == nil || *dto.VendorID != vendorID {
		t.Fatalf("review vendor = %v, want %s", dto.VendorID, vendorID)
	}
	if dto.IsVerifiedPurchase {
		t.Fatal("review without an order must not be verified")
	}
}

func TestVerifiedPurchaseMark(t *testing.T) {
	f := newFixture(t)
	vendorID := uuid.New()
	productID := f.addProduct(vendorID)

	reviewer := customer()
	orderID := f.addOrder(&reviewer.UserID, productID, vendorID)

	dto, err := f.svc.Create(context.Background(), reviewer, CreateInput{ProductID: &productID, OrderID: &orderID, Rating: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !dto.IsVerifiedPurchase {
		t.Fatal("expected verified purchase mark")
	}

	// Another customer's order grants nothing.
	stranger := customer()
	_, err = f.svc.Create(context.Background(), stranger, CreateInput{ProductID: &productID, OrderID: &orderID, Rating: 5})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN for foreign order, got %v", err)
	}

	// An order that never contained the product cannot verify it.
	otherProduct := f.addProduct(vendorID)
	_, err = f.svc.Create(context.Background(), reviewer, CreateInput{ProductID: &otherProduct, OrderID: &orderID, Rating: 5})
	appErr = pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION for unrelated product, got %v", err)
	}
}

func TestFlagPullsReviewFromPublicLists(t *testing.T) {
	f := newFixture(t)
	vendorID := uuid.New()
	productID := f.addProduct(vendorID)

	dto, err := f.svc.Create(context.Background(), customer(), CreateInput{ProductID: &productID, Rating: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.svc.Flag(context.Background(), customer(), dto.ID, "spam")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("non-admin flag should be forbidden, got %v", err)
	}

	admin := &guard.Principal{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	flagged, err := f.svc.Flag(context.Background(), admin, dto.ID, "spam")
	if err != nil {
		t.Fatalf("flag: %v", err)
	}
	if !flagged.Flagged || flagged.IsPublished {
		t.Fatalf("flagged review should be unpublished: %+v", flagged)
	}

	listed, err := f.svc.ListForProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("flagged review still listed: %+v", listed)
	}

	restored, err := f.svc.Unflag(context.Background(), admin, dto.ID)
	if err != nil {
		t.Fatalf("unflag: %v", err)
	}
	if restored.Flagged || !restored.IsPublished || restored.FlagReason != nil {
		t.Fatalf("unflag did not restore review: %+v", restored)
	}
}
