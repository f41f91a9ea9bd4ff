package vendors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/maxmagma/wedstay-backend/internal/guard"
	"github.com/maxmagma/wedstay-backend/internal/lifecycle"
	"github.com/maxmagma/wedstay-backend/pkg/db"
	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
)

const maxSlugAttempts = 25

type vendorRepository interface {
	Create(ctx context.Context, vendor *models.Vendor) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Vendor, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, vendor *models.Vendor) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.VendorStatus, extra map[string]any) (int64, error)
}

// Service exposes vendor operations.
type Service interface {
	Onboard(ctx context.Context, principal *guard.Principal, input OnboardInput) (*VendorDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*VendorDTO, error)
	GetMine(ctx context.Context, principal *guard.Principal) (*VendorDTO, error)
	UpdateSettings(ctx context.Context, principal *guard.Principal, input UpdateSettingsInput) (*VendorDTO, error)
	Approve(ctx context.Context, principal *guard.Principal, vendorID uuid.UUID) (*VendorDTO, error)
	Reject(ctx context.Context, principal *guard.Principal, vendorID uuid.UUID, reason string) (*VendorDTO, error)
	Suspend(ctx context.Context, principal *guard.Principal, vendorID uuid.UUID) (*VendorDTO, error)
	Reapply(ctx context.Context, principal *guard.Principal) (*VendorDTO, error)
}

type service struct {
	repo vendorRepository
}

// NewService builds a vendor service with the provided repository.
func NewService(repo vendorRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	return &service{repo: repo}, nil
}

// OnboardInput captures the company details for a new vendor application.
type OnboardInput struct {
	CompanyName     string
	Description     *string
	Phone           *string
	Email           *string
	Website         *string
	ServiceAreas    []string
	YearsInBusiness *int
	BusinessLicense *string
}

// UpdateSettingsInput captures the vendor-editable fields.
type UpdateSettingsInput struct {
	CompanyName     *string
	Description     *string
	Phone           *string
	Email           *string
	Website         *string
	ServiceAreas    *[]string
	YearsInBusiness *int
	BusinessLicense *string
}

// Onboard creates a pending vendor for the principal. A profile may own
// at most one vendor; a second application fails with ALREADY_EXISTS.
func (s *service) Onboard(ctx context.Context, principal *guard.Principal, input OnboardInput) (*VendorDTO, error) {
	if principal == nil {
		return nil, guard.DecisionUnauthenticated.Err()
	}
	company := strings.TrimSpace(input.CompanyName)
	if company == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company name is required")
	}

	if _, err := s.repo.FindByUserID(ctx, principal.UserID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyExists, "vendor already exists for this account")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing vendor")
	}

	base := Slugify(company)
	if base == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company name yields an empty slug")
	}

	vendor := &models.Vendor{
		UserID:          principal.UserID,
		CompanyName:     company,
		Description:     input.Description,
		Phone:           input.Phone,
		Email:           input.Email,
		Website:         input.Website,
		ServiceAreas:    pq.StringArray(input.ServiceAreas),
		YearsInBusiness: input.YearsInBusiness,
		BusinessLicense: input.BusinessLicense,
		Status:          enums.VendorStatusPending,
	}

	slug := base
	for attempt := 2; attempt <= maxSlugAttempts+1; attempt++ {
		taken, err := s.repo.SlugExists(ctx, slug)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
		if !taken {
			vendor.Slug = slug
			err = s.repo.Create(ctx, vendor)
			if err == nil {
				return FromModel(vendor), nil
			}
			if !db.IsUniqueViolation(err) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vendor")
			}
			// lost a race on slug or user_id; re-check which
			if _, findErr := s.repo.FindByUserID(ctx, principal.UserID); findErr == nil {
				return nil, pkgerrors.New(pkgerrors.CodeAlreadyExists, "vendor already exists for this account")
			}
		}
		slug = fmt.Sprintf("%s-%d", base, attempt)
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not derive a unique slug")
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*VendorDTO, error) {
	vendor, err := s.loadVendor(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(vendor), nil
}

func (s *service) GetMine(ctx context.Context, principal *guard.Principal) (*VendorDTO, error) {
	vendor, err := s.loadOwnVendor(ctx, principal)
	if err != nil {
		return nil, err
	}
	return FromModel(vendor), nil
}

// UpdateSettings mutates the principal's own vendor profile. Status and
// counters are never touched here.
func (s *service) UpdateSettings(ctx context.Context, principal *guard.Principal, input UpdateSettingsInput) (*VendorDTO, error) {
	vendor, err := s.loadOwnVendor(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := guard.MutateVendor(principal, vendor).Err(); err != nil {
		return nil, err
	}

	if input.CompanyName != nil {
		company := strings.TrimSpace(*input.CompanyName)
		if company == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "company name cannot be empty")
		}
		vendor.CompanyName = company
	}
	if input.Description != nil {
		vendor.Description = input.Description
	}
	if input.Phone != nil {
		vendor.Phone = input.Phone
	}
	if input.Email != nil {
		vendor.Email = input.Email
	}
	if input.Website != nil {
		vendor.Website = input.Website
	}
	if input.ServiceAreas != nil {
		vendor.ServiceAreas = pq.StringArray(*input.ServiceAreas)
	}
	if input.YearsInBusiness != nil {
		vendor.YearsInBusiness = input.YearsInBusiness
	}
	if input.BusinessLicense != nil {
		vendor.BusinessLicense = input.BusinessLicense
	}

	if err := s.repo.Update(ctx, vendor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vendor")
	}
	return FromModel(vendor), nil
}

// Approve moves a pending vendor to approved. Approving an already
// approved vendor is an idempotent no-op.
func (s *service) Approve(ctx context.Context, principal *guard.Principal, vendorID uuid.UUID) (*VendorDTO, error) {
	if err := guard.Admin(principal).Err(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return s.transition(ctx, vendorID, enums.VendorStatusApproved, map[string]any{
		"approved_at":      now,
		"rejection_reason": nil,
	})
}

// Reject moves a pending vendor to rejected. A reason is required.
func (s *service) Reject(ctx context.Context, principal *guard.Principal, vendorID uuid.UUID, reason string) (*VendorDTO, error) {
	if err := guard.Admin(principal).Err(); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}
	return s.transition(ctx, vendorID, enums.VendorStatusRejected, map[string]any{
		"rejection_reason": reason,
	})
}

// Suspend moves an approved vendor to suspended.
func (s *service) Suspend(ctx context.Context, principal *guard.Principal, vendorID uuid.UUID) (*VendorDTO, error) {
	if err := guard.Admin(principal).Err(); err != nil {
		return nil, err
	}
	return s.transition(ctx, vendorID, enums.VendorStatusSuspended, nil)
}

// Reapply lets a rejected vendor move back to pending review.
func (s *service) Reapply(ctx context.Context, principal *guard.Principal) (*VendorDTO, error) {
	vendor, err := s.loadOwnVendor(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := guard.MutateVendor(principal, vendor).Err(); err != nil {
		return nil, err
	}
	return s.transition(ctx, vendor.ID, enums.VendorStatusPending, map[string]any{
		"rejection_reason": nil,
	})
}

// transition executes a guarded read-modify-write: the status predicate in
// the UPDATE catches any concurrent change between the read and the write.
// Already being at the target is treated as success, not a violation.
func (s *service) transition(ctx context.Context, vendorID uuid.UUID, target enums.VendorStatus, extra map[string]any) (*VendorDTO, error) {
	vendor, err := s.loadVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if vendor.Status == target {
		return FromModel(vendor), nil
	}
	if err := lifecycle.StepVendor(vendor.Status, target); err != nil {
		return nil, err
	}

	affected, err := s.repo.TransitionStatus(ctx, vendorID, vendor.Status, target, extra)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition vendor status")
	}
	if affected == 0 {
		current, reloadErr := s.loadVendor(ctx, vendorID)
		if reloadErr == nil && current.Status == target {
			return FromModel(current), nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "vendor status changed concurrently")
	}
	return s.GetByID(ctx, vendorID)
}

func (s *service) loadVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	vendor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	return vendor, nil
}

func (s *service) loadOwnVendor(ctx context.Context, principal *guard.Principal) (*models.Vendor, error) {
	if principal == nil {
		return nil, guard.DecisionUnauthenticated.Err()
	}
	vendor, err := s.repo.FindByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	return vendor, nil
}
