package profiles

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

type stubProfileRepo struct {
	byID        map[uuid.UUID]*models.Profile
	createErr   error
	roleUpdates []enums.UserRole
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{byID: make(map[uuid.UUID]*models.Profile)}
}

func (s *stubProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if p, ok := s.byID[id]; ok {
		cpy := *p
		return &cpy, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	if s.createErr != nil {
		return s.createErr
	}
	cpy := *profile
	s.byID[profile.ID] = &cpy
	return nil
}

func (s *stubProfileRepo) UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) (int64, error) {
	p, ok := s.byID[id]
	if !ok {
		return 0, nil
	}
	p.Role = role
	s.roleUpdates = append(s.roleUpdates, role)
	return 1, nil
}

func TestEnsureProfileCreatesOnFirstSignIn(t *testing.T) {
	repo := newStubProfileRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	userID := uuid.New()
	dto, err := svc.EnsureProfile(context.Background(), EnsureProfileInput{UserID: userID, Email: "Jamie@Example.COM"})
	if err != nil {
		t.Fatalf("ensure profile: %v", err)
	}
	if dto.Email != "jamie@example.com" {
		t.Fatalf("expected normalized email, got %q", dto.Email)
	}
	if dto.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", dto.Role)
	}

	again, err := svc.EnsureProfile(context.Background(), EnsureProfileInput{UserID: userID, Email: "jamie@example.com"})
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if again.ID != dto.ID {
		t.Fatalf("expected same profile, got %s and %s", dto.ID, again.ID)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected a single row, got %d", len(repo.byID))
	}
}

func TestEnsureProfileValidation(t *testing.T) {
	svc, _ := NewService(newStubProfileRepo())

	_, err := svc.EnsureProfile(context.Background(), EnsureProfileInput{Email: "a@b.c"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing user id, got %v", err)
	}

	_, err = svc.EnsureProfile(context.Background(), EnsureProfileInput{UserID: uuid.New()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing email, got %v", err)
	}
}

func TestSetRoleRequiresAdmin(t *testing.T) {
	repo := newStubProfileRepo()
	target := &models.Profile{ID: uuid.New(), Email: "x@y.z", Role: enums.UserRoleCustomer}
	repo.byID[target.ID] = target
	svc, _ := NewService(repo)

	_, err := svc.SetRole(context.Background(), nil, target.ID, enums.UserRoleVendor)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	customer := &guard.Principal{UserID: uuid.New(), Role: enums.UserRoleCustomer}
	_, err = svc.SetRole(context.Background(), customer, target.ID, enums.UserRoleVendor)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	admin := &guard.Principal{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	dto, err := svc.SetRole(context.Background(), admin, target.ID, enums.UserRoleVendor)
	if err != nil {
		t.Fatalf("set role: %v", err)
	}
	if dto.Role != enums.UserRoleVendor {
		t.Fatalf("expected role updated, got %s", dto.Role)
	}
}

func TestSetRoleUnknownProfile(t *testing.T) {
	svc, _ := NewService(newStubProfileRepo())
	admin := &guard.Principal{UserID: uuid.New(), Role: enums.UserRoleAdmin}

	_, err := svc.SetRole(context.Background(), admin, uuid.New(), enums.UserRoleAdmin)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
