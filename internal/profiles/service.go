package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maxmagma/wedstay-backend/internal/guard"
	"github.com/maxmagma/wedstay-backend/pkg/db"
	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
)

type profileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) (int64, error)
}

// Service exposes profile operations.
type Service interface {
	EnsureProfile(ctx context.Context, input EnsureProfileInput) (*ProfileDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ProfileDTO, error)
	SetRole(ctx context.Context, principal *guard.Principal, targetID uuid.UUID, role enums.UserRole) (*ProfileDTO, error)
}

type service struct {
	repo profileRepository
}

// NewService builds a profile service with the provided repository.
func NewService(repo profileRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	return &service{repo: repo}, nil
}

// EnsureProfileInput carries identity provider data for first-sign-in upsert.
type EnsureProfileInput struct {
	UserID   uuid.UUID
	Email    string
	FullName *string
}

// EnsureProfile creates the profile on first sign-in and returns the
// existing row on every later call. Concurrent first calls collapse onto
// the same row via the primary key.
func (s *service) EnsureProfile(ctx context.Context, input EnsureProfileInput) (*ProfileDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	existing, err := s.repo.FindByID(ctx, input.UserID)
	if err == nil {
		return FromModel(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	profile := &models.Profile{
		ID:       input.UserID,
		Email:    email,
		FullName: input.FullName,
		Role:     enums.UserRoleCustomer,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		if db.IsUniqueViolation(err) {
			existing, findErr := s.repo.FindByID(ctx, input.UserID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "reload profile")
			}
			return FromModel(existing), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
	}
	return FromModel(profile), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return FromModel(profile), nil
}

// SetRole promotes or demotes a profile. Admin only.
func (s *service) SetRole(ctx context.Context, principal *guard.Principal, targetID uuid.UUID, role enums.UserRole) (*ProfileDTO, error) {
	if err := guard.Admin(principal).Err(); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", role))
	}

	affected, err := s.repo.UpdateRole(ctx, targetID, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	return s.GetByID(ctx, targetID)
}
