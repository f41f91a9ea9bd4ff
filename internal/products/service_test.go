package products

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/maxmagma/wedstay-backend/internal/aggregator"
	"github.com/maxmagma/wedstay-backend/internal/guard"
	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
	"github.com/maxmagma/wedstay-backend/pkg/pagination"
)

type stubProductRepo struct {
	byID map[uuid.UUID]*models.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{byID: make(map[uuid.UUID]*models.Product)}
}

func (s *stubProductRepo) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	cpy := *product
	s.byID[product.ID] = &cpy
	return nil
}

func (s *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.byID[id]; ok {
		cpy := *p
		return &cpy, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductRepo) FindByHandle(ctx context.Context, handle string) (*models.Product, error) {
	for _, p := range s.byID {
		if p.Handle == handle {
			cpy := *p
			return &cpy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductRepo) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, p := range s.byID {
		if p.VendorID == vendorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubProductRepo) ListApproved(ctx context.Context, params pagination.Params) ([]models.Product, error) {
	var out []models.Product
	for _, p := range s.byID {
		if p.Status == enums.ProductStatusApproved && p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubProductRepo) Update(ctx context.Context, product *models.Product) error {
	cpy := *product
	s.byID[product.ID] = &cpy
	return nil
}

func (s *stubProductRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.ProductStatus, extra map[string]any) (int64, error) {
	p, ok := s.byID[id]
	if !ok || p.Status != from {
		return 0, nil
	}
	p.Status = to
	if reason, ok := extra["rejection_reason"]; ok {
		if reason == nil {
			p.RejectionReason = nil
		} else if str, ok := reason.(string); ok {
			p.RejectionReason = &str
		}
	}
	if published, ok := extra["published_at"]; ok {
		if ts, ok := published.(time.Time); ok {
			p.PublishedAt = &ts
		}
	}
	return 1, nil
}

func (s *stubProductRepo) DeleteInStatus(ctx context.Context, id uuid.UUID, statuses ...enums.ProductStatus) (int64, error) {
	p, ok := s.byID[id]
	if !ok {
		return 0, nil
	}
	for _, st := range statuses {
		if p.Status == st {
			delete(s.byID, id)
			return 1, nil
		}
	}
	return 0, nil
}

type stubVendorSource struct {
	byUser map[uuid.UUID]*models.Vendor
}

func (s *stubVendorSource) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	if v, ok := s.byUser[userID]; ok {
		cpy := *v
		return &cpy, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubEventSink struct {
	applied []aggregator.ApplyEventInput
}

func (s *stubEventSink) ApplyEvent(_ context.Context, input aggregator.ApplyEventInput) error {
	s.applied = append(s.applied, input)
	return nil
}

type fixture struct {
	repo    *stubProductRepo
	svc     Service
	ownerID uuid.UUID
	vendor  *models.Vendor
	events  *stubEventSink
}

func newFixture(t *testing.T, vendorStatus enums.VendorStatus) *fixture {
	t.Helper()
	repo := newStubProductRepo()
	ownerID := uuid.New()
	vendor := &models.Vendor{ID: uuid.New(), UserID: ownerID, Status: vendorStatus}
	events := &stubEventSink{}
	logg := logger.New(logger.Options{ServiceName: "products-test", Level: logger.ParseLevel("error"), Output: &bytes.Buffer{}})
	svc, err := NewService(repo, &stubVendorSource{byUser: map[uuid.UUID]*models.Vendor{ownerID: vendor}}, events, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{repo: repo, svc: svc, ownerID: ownerID, vendor: vendor, events: events}
}

func (f *fixture) owner() *guard.Principal {
	return &guard.Principal{UserID: f.ownerID, Role: enums.UserRoleVendor}
}

func adminPrincipal() *guard.Principal {
	return &guard.Principal{UserID: uuid.New(), Role: enums.UserRoleAdmin}
}

func strPtr(s string) *string { return &s }

func TestCreateRequiresApprovedVendor(t *testing.T) {
	f := newFixture(t, enums.VendorStatusPending)

	_, err := f.svc.Create(context.Background(), f.owner(), CreateInput{Name: "Arch", BasePrice: decimal.NewFromInt(100)})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for unapproved vendor, got %v", err)
	}
}

func TestCreateStartsDraftWithDerivedHandle(t *testing.T) {
	f := newFixture(t, enums.VendorStatusApproved)

	dto, err := f.svc.Create(context.Background(), f.owner(), CreateInput{
		Name:      "Gold Candelabra Set",
		BasePrice: decimal.NewFromInt(120),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Status != enums.ProductStatusDraft {
		t.Fatalf("expected draft, got %s", dto.Status)
	}
	if dto.Slug != "gold-candelabra-set" {
		t.Fatalf("unexpected slug %q", dto.Slug)
	}
	if !strings.HasPrefix(dto.Handle, "gold-candelabra-set-") || dto.Handle == dto.Slug {
		t.Fatalf("expected suffixed handle, got %q", dto.Handle)
	}
	if dto.VendorID != f.vendor.ID {
		t.Fatalf("expected vendor id %s, got %s", f.vendor.ID, dto.VendorID)
	}
}

func TestUpdateKeepsHandleAndVendor(t *testing.T) {
	f := newFixture(t, enums.VendorStatusApproved)
	dto, err := f.svc.Create(context.Background(), f.owner(), CreateInput{Name: "Velvet Runner", BasePrice: decimal.NewFromInt(30)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.svc.Update(context.Background(), f.owner(), dto.ID, UpdateInput{Name: strPtr("Silk Runner")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Handle != dto.Handle {
		t.Fatalf("handle must be immutable: %q became %q", dto.Handle, updated.Handle)
	}
	if updated.VendorID != dto.VendorID {
		t.Fatalf("vendor id must be immutable")
	}
	if updated.Slug != "silk-runner" {
		t.Fatalf("expected refreshed slug, got %q", updated.Slug)
	}
}

func TestUpdateByOtherVendorForbidden(t *testing.T) {
	f := newFixture(t, enums.VendorStatusApproved)
	dto, _ := f.svc.Create(context.Background(), f.owner(), CreateInput{Name: "Arbor", BasePrice: decimal.NewFromInt(80)})

	stranger := &guard.Principal{UserID: uuid.New(), Role: enums.UserRoleVendor}
	_, err := f.svc.Update(context.Background(), stranger, dto.ID, UpdateInput{Name: strPtr("Hijacked")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSubmitValidatesRequiredFields(t *testing.T) {
	f := newFixture(t, enums.VendorStatusApproved)
	dto, _ := f.svc.Create(context.Background(), f.owner(), CreateInput{Name: "Bare Listing", BasePrice: decimal.Zero})

	_, err := f.svc.Submit(context.Background(), f.owner(), dto.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestModerationLifecycle(t *testing.T) {
	f := newFixture(t, enums.VendorStatusApproved)
	dto, _ := f.svc.Create(context.Background(), f.owner(), CreateInput{
		Name:        "Chiavari Chairs",
		Description: strPtr("Gold chiavari chairs, set of 10"),
		Category:    strPtr("furniture"),
		BasePrice:   decimal.NewFromInt(250),
	})

	submitted, err := f.svc.Submit(context.Background(), f.owner(), dto.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != enums.ProductStatusPending {
		t.Fatalf("expected pending, got %s", submitted.Status)
	}

	// only admins moderate
	_, err = f.svc.Approve(context.Background(), f.owner(), dto.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	approved, err := f.svc.Approve(context.Background(), adminPrincipal(), dto.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != enums.ProductStatusApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}
	if approved.PublishedAt == nil {
		t.Fatalf("expected published_at set on first approval")
	}

	archived, err := f.svc.Archive(context.Background(), f.owner(), dto.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if archived.Status != enums.ProductStatusArchived {
		t.Fatalf("expected archived, got %s", archived.Status)
	}
}

func TestRejectAndResubmit(t *testing.T) {
	f := newFixture(t, enums.VendorStatusApproved)
	dto, _ := f.svc.Create(context.Background(), f.owner(), CreateInput{
		Name:        "Lounge Set",
		Description: strPtr("White leather lounge set"),
		Category:    strPtr("furniture"),
		BasePrice:   decimal.NewFromInt(400),
	})
	if _, err := f.svc.Submit(context.Background(), f.owner(), dto.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	rejected, err := f.svc.Reject(context.Background(), adminPrincipal(), dto.ID, strPtr("photos missing"))
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != enums.ProductStatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "photos missing" {
		t.Fatalf("expected rejection reason, got %v", rejected.RejectionReason)
	}

	// an edit does not resubmit on its own
	updated, err := f.svc.Update(context.Background(), f.owner(), dto.ID, UpdateInput{PrimaryImage: strPtr("https://img/1.jpg")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != enums.ProductStatusRejected {
		t.Fatalf("edit should not change status, got %s", updated.Status)
	}

	resubmitted, err := f.svc.Submit(context.Background(), f.owner(), dto.ID)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.Status != enums.ProductStatusPending {
		t.Fatalf("expected pending after resubmit, got %s", resubmitted.Status)
	}
	if resubmitted.RejectionReason != nil {
		t.Fatalf("expected rejection reason cleared")
	}
}

func TestDeleteOnlyDraftOrArchived(t *testing.T) {
	f := newFixture(t, enums.VendorStatusApproved)
	dto, _ := f.svc.Create(context.Background(), f.owner(), CreateInput{
		Name:        "Backdrop",
		Description: strPtr("Sequin backdrop"),
		Category:    strPtr("decor"),
		BasePrice:   decimal.NewFromInt(90),
	})
	if _, err := f.svc.Submit(context.Background(), f.owner(), dto.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	err := f.svc.Delete(context.Background(), f.owner(), dto.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT deleting pending product, got %v", err)
	}

	if _, err := f.svc.Approve(context.Background(), adminPrincipal(), dto.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.svc.Archive(context.Background(), f.owner(), dto.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if err := f.svc.Delete(context.Background(), f.owner(), dto.ID); err != nil {
		t.Fatalf("delete archived: %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), dto.ID); err == nil {
		t.Fatalf("expected product gone")
	}
}

func TestCreateAndDeleteFeedVendorProductCount(t *testing.T) {
	f := newFixture(t, enums.VendorStatusApproved)
	dto, err := f.svc.Create(context.Background(), f.owner(), CreateInput{Name: "Arbor", BasePrice: decimal.NewFromInt(75)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(f.events.applied) != 1 {
		t.Fatalf("expected one event after create, got %d", len(f.events.applied))
	}
	created := f.events.applied[0]
	if created.Kind != enums.CounterEventProductCount || created.TargetKind != enums.CounterTargetVendor {
		t.Fatalf("unexpected event %+v", created)
	}
	if created.TargetID != f.vendor.ID || created.Delta != 1 {
		t.Fatalf("create should credit the owning vendor by one, got %+v", created)
	}
	if created.EventID != aggregator.ProductCreateEventID(dto.ID) {
		t.Fatalf("unexpected event id %q", created.EventID)
	}

	if err := f.svc.Delete(context.Background(), f.owner(), dto.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.events.applied) != 2 {
		t.Fatalf("expected a second event after delete, got %d", len(f.events.applied))
	}
	deleted := f.events.applied[1]
	if deleted.Delta != -1 || deleted.TargetID != f.vendor.ID {
		t.Fatalf("delete should debit the owning vendor by one, got %+v", deleted)
	}
	if deleted.EventID != aggregator.ProductDeleteEventID(dto.ID) {
		t.Fatalf("unexpected event id %q", deleted.EventID)
	}
}

func TestGetPublicByHandleHidesUnapproved(t *testing.T) {
	f := newFixture(t, enums.VendorStatusApproved)
	dto, _ := f.svc.Create(context.Background(), f.owner(), CreateInput{Name: "Hidden", BasePrice: decimal.NewFromInt(10)})

	_, err := f.svc.GetPublicByHandle(context.Background(), dto.Handle)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("draft product should read as absent, got %v", err)
	}
}
