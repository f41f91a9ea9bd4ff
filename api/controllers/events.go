package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/maxmagma/wedstay-backend/api/responses"
	"github.com/maxmagma/wedstay-backend/api/validators"
	"github.com/maxmagma/wedstay-backend/internal/aggregator"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
)

type trackEventRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	DedupeKey string `json:"dedupe_key" validate:"required,min=8,max=128"`
}

func (req trackEventRequest) parse() (uuid.UUID, string, error) {
	productID, err := uuid.Parse(strings.TrimSpace(req.ProductID))
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return productID, strings.TrimSpace(req.DedupeKey), nil
}

// TrackProductView records a catalog view. The client-supplied dedupe key
// makes retries of the same page load count once.
func TrackProductView(svc aggregator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload trackEventRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, dedupeKey, err := payload.parse()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.ApplyEvent(r.Context(), aggregator.ApplyEventInput{
			EventID:    aggregator.ViewEventID(productID, dedupeKey),
			Kind:       enums.CounterEventView,
			TargetKind: enums.CounterTargetProduct,
			TargetID:   productID,
			Delta:      1,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "recorded"})
	}
}

// TrackCartAdd records a cart add, deduplicated per client session.
func TrackCartAdd(svc aggregator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload trackEventRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, sessionKey, err := payload.parse()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.ApplyEvent(r.Context(), aggregator.ApplyEventInput{
			EventID:    aggregator.CartAddEventID(productID, sessionKey),
			Kind:       enums.CounterEventCartAdd,
			TargetKind: enums.CounterTargetProduct,
			TargetID:   productID,
			Delta:      1,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "recorded"})
	}
}
