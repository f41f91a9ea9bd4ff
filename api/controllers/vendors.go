package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/maxmagma/wedstay-backend/api/middleware"
	"github.com/maxmagma/wedstay-backend/api/responses"
	"github.com/maxmagma/wedstay-backend/api/validators"
	"github.com/maxmagma/wedstay-backend/internal/guard"
	vendorsvc "github.com/maxmagma/wedstay-backend/internal/vendors"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
)

type onboardVendorRequest struct {
	CompanyName     string   `json:"company_name" validate:"required"`
	Description     *string  `json:"description,omitempty"`
	Phone           *string  `json:"phone,omitempty"`
	Email           *string  `json:"email,omitempty" validate:"omitempty,email"`
	Website         *string  `json:"website,omitempty"`
	ServiceAreas    []string `json:"service_areas,omitempty"`
	YearsInBusiness *int     `json:"years_in_business,omitempty" validate:"omitempty,min=0"`
	BusinessLicense *string  `json:"business_license,omitempty"`
}

// OnboardVendor records a vendor application for the authenticated user.
func OnboardVendor(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload onboardVendorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendor, err := svc.Onboard(r.Context(), middleware.PrincipalFromContext(r.Context()), vendorsvc.OnboardInput{
			CompanyName:     strings.TrimSpace(payload.CompanyName),
			Description:     payload.Description,
			Phone:           payload.Phone,
			Email:           payload.Email,
			Website:         payload.Website,
			ServiceAreas:    payload.ServiceAreas,
			YearsInBusiness: payload.YearsInBusiness,
			BusinessLicense: payload.BusinessLicense,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, vendor)
	}
}

// GetMyVendor returns the principal's own vendor record in any status.
func GetMyVendor(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendor, err := svc.GetMine(r.Context(), middleware.PrincipalFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendor)
	}
}

type updateVendorRequest struct {
	CompanyName     *string   `json:"company_name,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	Email           *string   `json:"email,omitempty" validate:"omitempty,email"`
	Website         *string   `json:"website,omitempty"`
	ServiceAreas    *[]string `json:"service_areas,omitempty"`
	YearsInBusiness *int      `json:"years_in_business,omitempty" validate:"omitempty,min=0"`
	BusinessLicense *string   `json:"business_license,omitempty"`
}

// UpdateVendorSettings applies owner edits to the vendor profile.
func UpdateVendorSettings(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateVendorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendor, err := svc.UpdateSettings(r.Context(), middleware.PrincipalFromContext(r.Context()), vendorsvc.UpdateSettingsInput{
			CompanyName:     payload.CompanyName,
			Description:     payload.Description,
			Phone:           payload.Phone,
			Email:           payload.Email,
			Website:         payload.Website,
			ServiceAreas:    payload.ServiceAreas,
			YearsInBusiness: payload.YearsInBusiness,
			BusinessLicense: payload.BusinessLicense,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendor)
	}
}

// ReapplyVendor resubmits a rejected application for review.
func ReapplyVendor(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendor, err := svc.Reapply(r.Context(), middleware.PrincipalFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendor)
	}
}

// ApproveVendor admits a pending application to the marketplace.
func ApproveVendor(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return vendorTransition(logg, svc.Approve)
}

type rejectVendorRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// RejectVendor declines a pending application with a reason.
func RejectVendor(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := validators.ParsePathUUID(r, "vendorID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rejectVendorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reason := strings.TrimSpace(payload.Reason)
		if reason == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "a rejection reason is required"))
			return
		}

		vendor, err := svc.Reject(r.Context(), middleware.PrincipalFromContext(r.Context()), vendorID, reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendor)
	}
}

// SuspendVendor pulls an approved vendor and its catalog from the marketplace.
func SuspendVendor(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return vendorTransition(logg, svc.Suspend)
}

func vendorTransition(logg *logger.Logger, op func(ctx context.Context, principal *guard.Principal, vendorID uuid.UUID) (*vendorsvc.VendorDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := validators.ParsePathUUID(r, "vendorID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendor, err := op(r.Context(), middleware.PrincipalFromContext(r.Context()), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendor)
	}
}
