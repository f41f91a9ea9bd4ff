package controllers

import (
	"net/http"

	"github.com/maxmagma/wedstay-backend/api/middleware"
	"github.com/maxmagma/wedstay-backend/api/responses"
	"github.com/maxmagma/wedstay-backend/api/validators"
	"github.com/maxmagma/wedstay-backend/internal/guard"
	profilesvc "github.com/maxmagma/wedstay-backend/internal/profiles"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
)

type bootstrapProfileRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=200"`
}

// BootstrapProfile upserts the caller's profile row from identity provider
// data. Clients call it once after sign-in; repeat calls return the
// existing row unchanged.
func BootstrapProfile(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.PrincipalFromContext(r.Context())
		if principal == nil {
			responses.WriteError(r.Context(), logg, w, guard.DecisionUnauthenticated.Err())
			return
		}

		var payload bootstrapProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.EnsureProfile(r.Context(), profilesvc.EnsureProfileInput{
			UserID:   principal.UserID,
			Email:    payload.Email,
			FullName: payload.FullName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// GetMyProfile returns the caller's own profile.
func GetMyProfile(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.PrincipalFromContext(r.Context())
		if principal == nil {
			responses.WriteError(r.Context(), logg, w, guard.DecisionUnauthenticated.Err())
			return
		}

		profile, err := svc.GetByID(r.Context(), principal.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
