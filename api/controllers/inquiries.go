package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maxmagma/wedstay-backend/api/middleware"
	"github.com/maxmagma/wedstay-backend/api/responses"
	"github.com/maxmagma/wedstay-backend/api/validators"
	"github.com/maxmagma/wedstay-backend/internal/guard"
	inquirysvc "github.com/maxmagma/wedstay-backend/internal/inquiries"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
	"github.com/maxmagma/wedstay-backend/pkg/types"
)

type inquiryItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Notes     string `json:"notes,omitempty"`
}

type submitInquiryRequest struct {
	FullName      string               `json:"full_name" validate:"required"`
	Email         string               `json:"email" validate:"required,email"`
	Phone         *string              `json:"phone,omitempty"`
	EventDate     *time.Time           `json:"event_date,omitempty"`
	EventType     *string              `json:"event_type,omitempty"`
	VenueName     *string              `json:"venue_name,omitempty"`
	VenueLocation *string              `json:"venue_location,omitempty"`
	GuestCount    *int                 `json:"guest_count,omitempty" validate:"omitempty,min=1"`
	Items         []inquiryItemRequest `json:"items" validate:"required,min=1,dive"`
	CustomerNotes *string              `json:"customer_notes,omitempty"`
	Source        *string              `json:"source,omitempty"`
}

func (req submitInquiryRequest) toInput() (inquirysvc.SubmitInput, error) {
	items := make([]types.InquiryItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(strings.TrimSpace(item.ProductID))
		if err != nil {
			return inquirysvc.SubmitInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		items = append(items, types.InquiryItem{
			ProductID: productID,
			Quantity:  item.Quantity,
			Notes:     strings.TrimSpace(item.Notes),
		})
	}

	return inquirysvc.SubmitInput{
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         req.Phone,
		EventDate:     req.EventDate,
		EventType:     req.EventType,
		VenueName:     req.VenueName,
		VenueLocation: req.VenueLocation,
		GuestCount:    req.GuestCount,
		Items:         items,
		CustomerNotes: req.CustomerNotes,
		Source:        req.Source,
	}, nil
}

// SubmitInquiry records a quote request. Guests are welcome; a logged-in
// customer gets the inquiry attached to their account.
func SubmitInquiry(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload submitInquiryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiry, err := svc.Submit(r.Context(), middleware.PrincipalFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, inquiry)
	}
}

// GetInquiry returns one inquiry to its owner, a referenced vendor, or an admin.
func GetInquiry(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inquiryID, err := validators.ParsePathUUID(r, "inquiryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiry, err := svc.GetByID(r.Context(), middleware.PrincipalFromContext(r.Context()), inquiryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, inquiry)
	}
}

// ListMyInquiries serves the authenticated customer's inquiries.
func ListMyInquiries(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inquiries, err := svc.ListMine(r.Context(), middleware.PrincipalFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, inquiries)
	}
}

// ListVendorInquiries serves inquiries referencing the principal's vendor.
func ListVendorInquiries(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inquiries, err := svc.ListForVendor(r.Context(), middleware.PrincipalFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, inquiries)
	}
}

type respondInquiryRequest struct {
	QuotedPrice string `json:"quoted_price" validate:"required"`
	Message     string `json:"message" validate:"required"`
}

// RespondToInquiry appends a vendor quote and moves the inquiry to quoted.
func RespondToInquiry(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inquiryID, err := validators.ParsePathUUID(r, "inquiryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload respondInquiryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(strings.TrimSpace(payload.QuotedPrice))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quoted price"))
			return
		}

		inquiry, err := svc.Respond(r.Context(), middleware.PrincipalFromContext(r.Context()), inquiryID, inquirysvc.RespondInput{
			QuotedPrice: price,
			Message:     payload.Message,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, inquiry)
	}
}

// BookInquiry accepts a quote on behalf of the customer.
func BookInquiry(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return inquiryTransition(logg, svc.Book)
}

// CancelInquiry withdraws an open inquiry.
func CancelInquiry(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return inquiryTransition(logg, svc.Cancel)
}

// CompleteInquiry closes a booked inquiry after the event. Admin only.
func CompleteInquiry(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return inquiryTransition(logg, svc.Complete)
}

func inquiryTransition(logg *logger.Logger, op func(ctx context.Context, principal *guard.Principal, inquiryID uuid.UUID) (*inquirysvc.InquiryDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inquiryID, err := validators.ParsePathUUID(r, "inquiryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiry, err := op(r.Context(), middleware.PrincipalFromContext(r.Context()), inquiryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, inquiry)
	}
}
