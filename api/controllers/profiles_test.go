package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/maxmagma/wedstay-backend/api/middleware"
	"github.com/maxmagma/wedstay-backend/internal/guard"
	profilesvc "github.com/maxmagma/wedstay-backend/internal/profiles"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
)

type stubProfileService struct {
	ensured []profilesvc.EnsureProfileInput
}

func (s *stubProfileService) EnsureProfile(ctx context.Context, input profilesvc.EnsureProfileInput) (*profilesvc.ProfileDTO, error) {
	s.ensured = append(s.ensured, input)
	return &profilesvc.ProfileDTO{
		ID:       input.UserID,
		Email:    input.Email,
		FullName: input.FullName,
		Role:     enums.UserRoleCustomer,
	}, nil
}

func (s *stubProfileService) GetByID(ctx context.Context, id uuid.UUID) (*profilesvc.ProfileDTO, error) {
	return &profilesvc.ProfileDTO{ID: id, Email: "stored@example.com", Role: enums.UserRoleCustomer}, nil
}

func (s *stubProfileService) SetRole(ctx context.Context, principal *guard.Principal, targetID uuid.UUID, role enums.UserRole) (*profilesvc.ProfileDTO, error) {
	panic("unimplemented")
}

func TestBootstrapProfileUpsertsForPrincipal(t *testing.T) {
	logg := testControllerLogger()
	stub := &stubProfileService{}
	userID := uuid.New()

	body := `{"email":"new@example.com","full_name":"New User"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithPrincipal(req.Context(), &guard.Principal{UserID: userID, Role: enums.UserRoleCustomer}))
	rec := httptest.NewRecorder()
	BootstrapProfile(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(stub.ensured) != 1 {
		t.Fatalf("expected one upsert got %d", len(stub.ensured))
	}
	if stub.ensured[0].UserID != userID {
		t.Fatalf("upsert should target the principal, got %s", stub.ensured[0].UserID)
	}
	if stub.ensured[0].Email != "new@example.com" {
		t.Fatalf("unexpected email %q", stub.ensured[0].Email)
	}
}

func TestBootstrapProfileRequiresPrincipal(t *testing.T) {
	logg := testControllerLogger()
	stub := &stubProfileService{}

	body := `{"email":"new@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	BootstrapProfile(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if len(stub.ensured) != 0 {
		t.Fatalf("no upsert expected, got %d", len(stub.ensured))
	}
}

func TestBootstrapProfileRejectsBadEmail(t *testing.T) {
	logg := testControllerLogger()
	stub := &stubProfileService{}

	body := `{"email":"not-an-email"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithPrincipal(req.Context(), &guard.Principal{UserID: uuid.New(), Role: enums.UserRoleCustomer}))
	rec := httptest.NewRecorder()
	BootstrapProfile(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestGetMyProfileReturnsOwnRow(t *testing.T) {
	logg := testControllerLogger()
	stub := &stubProfileService{}
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/profile", nil)
	req = req.WithContext(middleware.WithPrincipal(req.Context(), &guard.Principal{UserID: userID, Role: enums.UserRoleCustomer}))
	rec := httptest.NewRecorder()
	GetMyProfile(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), userID.String()) {
		t.Fatalf("response should carry the principal's profile id: %s", rec.Body.String())
	}
}
