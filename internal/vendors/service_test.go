package vendors

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maxmagma/wedstay-backend/internal/guard"
	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
)

type stubVendorRepo struct {
	byID   map[uuid.UUID]*models.Vendor
	byUser map[uuid.UUID]uuid.UUID
	slugs  map[string]bool

	transitionErr  error
	forceNoRows    bool
	transitionLogs []string
}

func newStubVendorRepo() *stubVendorRepo {
	return &stubVendorRepo{
		byID:   make(map[uuid.UUID]*models.Vendor),
		byUser: make(map[uuid.UUID]uuid.UUID),
		slugs:  make(map[string]bool),
	}
}

func (s *stubVendorRepo) Create(ctx context.Context, vendor *models.Vendor) error {
	if vendor.ID == uuid.Nil {
		vendor.ID = uuid.New()
	}
	cpy := *vendor
	s.byID[vendor.ID] = &cpy
	s.byUser[vendor.UserID] = vendor.ID
	s.slugs[vendor.Slug] = true
	return nil
}

func (s *stubVendorRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	if v, ok := s.byID[id]; ok {
		cpy := *v
		return &cpy, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubVendorRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	if id, ok := s.byUser[userID]; ok {
		return s.FindByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubVendorRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	return s.slugs[slug], nil
}

func (s *stubVendorRepo) Update(ctx context.Context, vendor *models.Vendor) error {
	cpy := *vendor
	s.byID[vendor.ID] = &cpy
	return nil
}

func (s *stubVendorRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.VendorStatus, extra map[string]any) (int64, error) {
	if s.transitionErr != nil {
		return 0, s.transitionErr
	}
	if s.forceNoRows {
		return 0, nil
	}
	v, ok := s.byID[id]
	if !ok || v.Status != from {
		return 0, nil
	}
	v.Status = to
	if reason, ok := extra["rejection_reason"]; ok {
		if reason == nil {
			v.RejectionReason = nil
		} else if str, ok := reason.(string); ok {
			v.RejectionReason = &str
		}
	}
	s.transitionLogs = append(s.transitionLogs, string(from)+"->"+string(to))
	return 1, nil
}

func admin() *guard.Principal {
	return &guard.Principal{UserID: uuid.New(), Role: enums.UserRoleAdmin}
}

func TestOnboardCreatesPendingVendor(t *testing.T) {
	repo := newStubVendorRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	principal := &guard.Principal{UserID: uuid.New(), Role: enums.UserRoleCustomer}
	dto, err := svc.Onboard(context.Background(), principal, OnboardInput{CompanyName: "Bloom & Vine Rentals"})
	if err != nil {
		t.Fatalf("onboard: %v", err)
	}
	if dto.Status != enums.VendorStatusPending {
		t.Fatalf("expected pending status, got %s", dto.Status)
	}
	if dto.Slug != "bloom-vine-rentals" {
		t.Fatalf("unexpected slug %q", dto.Slug)
	}
}

func TestOnboardSecondVendorAlreadyExists(t *testing.T) {
	repo := newStubVendorRepo()
	svc, _ := NewService(repo)
	principal := &guard.Principal{UserID: uuid.New(), Role: enums.UserRoleCustomer}

	if _, err := svc.Onboard(context.Background(), principal, OnboardInput{CompanyName: "First Co"}); err != nil {
		t.Fatalf("first onboard: %v", err)
	}
	_, err := svc.Onboard(context.Background(), principal, OnboardInput{CompanyName: "Second Co"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeAlreadyExists {
		t.Fatalf("expected ALREADY_EXISTS, got %v", err)
	}
}

func TestOnboardSlugCollisionGetsSuffix(t *testing.T) {
	repo := newStubVendorRepo()
	svc, _ := NewService(repo)

	first, err := svc.Onboard(context.Background(), &guard.Principal{UserID: uuid.New()}, OnboardInput{CompanyName: "Golden Hour"})
	if err != nil {
		t.Fatalf("first onboard: %v", err)
	}
	second, err := svc.Onboard(context.Background(), &guard.Principal{UserID: uuid.New()}, OnboardInput{CompanyName: "Golden Hour"})
	if err != nil {
		t.Fatalf("second onboard: %v", err)
	}
	if first.Slug == second.Slug {
		t.Fatalf("expected distinct slugs, both %q", first.Slug)
	}
	if second.Slug != "golden-hour-2" {
		t.Fatalf("expected numeric suffix, got %q", second.Slug)
	}
}

func TestApproveLifecycle(t *testing.T) {
	repo := newStubVendorRepo()
	svc, _ := NewService(repo)
	vendor := &models.Vendor{UserID: uuid.New(), CompanyName: "Pending Co", Slug: "pending-co", Status: enums.VendorStatusPending}
	_ = repo.Create(context.Background(), vendor)

	_, err := svc.Approve(context.Background(), &guard.Principal{UserID: uuid.New(), Role: enums.UserRoleVendor}, vendor.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("non-admin approve should be forbidden, got %v", err)
	}

	dto, err := svc.Approve(context.Background(), admin(), vendor.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if dto.Status != enums.VendorStatusApproved {
		t.Fatalf("expected approved, got %s", dto.Status)
	}

	// second approve is an idempotent no-op
	dto, err = svc.Approve(context.Background(), admin(), vendor.ID)
	if err != nil {
		t.Fatalf("repeat approve should succeed: %v", err)
	}
	if dto.Status != enums.VendorStatusApproved {
		t.Fatalf("expected approved after repeat, got %s", dto.Status)
	}
	if len(repo.transitionLogs) != 1 {
		t.Fatalf("expected a single transition, got %v", repo.transitionLogs)
	}

	// rejecting an approved vendor violates the state graph
	_, err = svc.Reject(context.Background(), admin(), vendor.ID, "bad paperwork")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	repo := newStubVendorRepo()
	svc, _ := NewService(repo)
	vendor := &models.Vendor{UserID: uuid.New(), Slug: "x", Status: enums.VendorStatusPending}
	_ = repo.Create(context.Background(), vendor)

	_, err := svc.Reject(context.Background(), admin(), vendor.ID, "  ")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	dto, err := svc.Reject(context.Background(), admin(), vendor.ID, "incomplete application")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if dto.Status != enums.VendorStatusRejected {
		t.Fatalf("expected rejected, got %s", dto.Status)
	}
	if dto.RejectionReason == nil || *dto.RejectionReason != "incomplete application" {
		t.Fatalf("expected rejection reason persisted, got %v", dto.RejectionReason)
	}
}

func TestReapplyFromRejected(t *testing.T) {
	repo := newStubVendorRepo()
	svc, _ := NewService(repo)
	owner := uuid.New()
	reason := "missing license"
	vendor := &models.Vendor{UserID: owner, Slug: "y", Status: enums.VendorStatusRejected, RejectionReason: &reason}
	_ = repo.Create(context.Background(), vendor)

	dto, err := svc.Reapply(context.Background(), &guard.Principal{UserID: owner, Role: enums.UserRoleVendor})
	if err != nil {
		t.Fatalf("reapply: %v", err)
	}
	if dto.Status != enums.VendorStatusPending {
		t.Fatalf("expected pending after reapply, got %s", dto.Status)
	}
	if dto.RejectionReason != nil {
		t.Fatalf("expected rejection reason cleared, got %v", dto.RejectionReason)
	}
}

func TestConcurrentTransitionLosesGracefully(t *testing.T) {
	repo := newStubVendorRepo()
	svc, _ := NewService(repo)
	vendor := &models.Vendor{UserID: uuid.New(), Slug: "z", Status: enums.VendorStatusPending}
	_ = repo.Create(context.Background(), vendor)

	// no rows updated and the row is still pending: a true conflict the
	// caller is expected to retry
	repo.forceNoRows = true
	_, err := svc.Approve(context.Background(), admin(), vendor.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}

	repo.forceNoRows = false
	if _, err := svc.Approve(context.Background(), admin(), vendor.ID); err != nil {
		t.Fatalf("retry after conflict: %v", err)
	}
}

func TestSuspendOnlyFromApproved(t *testing.T) {
	repo := newStubVendorRepo()
	svc, _ := NewService(repo)
	vendor := &models.Vendor{UserID: uuid.New(), Slug: "s", Status: enums.VendorStatusPending}
	_ = repo.Create(context.Background(), vendor)

	_, err := svc.Suspend(context.Background(), admin(), vendor.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}

	repo.byID[vendor.ID].Status = enums.VendorStatusApproved
	dto, err := svc.Suspend(context.Background(), admin(), vendor.ID)
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if dto.Status != enums.VendorStatusSuspended {
		t.Fatalf("expected suspended, got %s", dto.Status)
	}
}

func TestApproveSuspendedVendorRejected(t *testing.T) {
	repo := newStubVendorRepo()
	svc, _ := NewService(repo)
	vendor := &models.Vendor{UserID: uuid.New(), Slug: "s", Status: enums.VendorStatusSuspended}
	_ = repo.Create(context.Background(), vendor)

	_, err := svc.Approve(context.Background(), admin(), vendor.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if repo.byID[vendor.ID].Status != enums.VendorStatusSuspended {
		t.Fatalf("status should be untouched, got %s", repo.byID[vendor.ID].Status)
	}
}
