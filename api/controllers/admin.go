package controllers

import (
	"net/http"
	"strings"

	"github.com/maxmagma/wedstay-backend/api/middleware"
	"github.com/maxmagma/wedstay-backend/api/responses"
	"github.com/maxmagma/wedstay-backend/api/validators"
	"github.com/maxmagma/wedstay-backend/internal/aggregator"
	profilesvc "github.com/maxmagma/wedstay-backend/internal/profiles"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
)

// TriggerReconcile recomputes every denormalized counter on demand. The
// cron worker runs the same pass hourly; this endpoint exists for support
// work after manual data fixes.
func TriggerReconcile(svc aggregator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Reconcile(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "reconciled"})
	}
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// SetProfileRole changes another user's role. Admin only.
func SetProfileRole(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := validators.ParsePathUUID(r, "profileID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setRoleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseUserRole(strings.TrimSpace(payload.Role))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		profile, err := svc.SetRole(r.Context(), middleware.PrincipalFromContext(r.Context()), profileID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
