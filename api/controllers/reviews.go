package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/maxmagma/wedstay-backend/api/middleware"
	"github.com/maxmagma/wedstay-backend/api/responses"
	"github.com/maxmagma/wedstay-backend/api/validators"
	reviewsvc "github.com/maxmagma/wedstay-backend/internal/reviews"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
)

type createReviewRequest struct {
	ProductID *string `json:"product_id,omitempty" validate:"omitempty,uuid"`
	VendorID  *string `json:"vendor_id,omitempty" validate:"omitempty,uuid"`
	OrderID   *string `json:"order_id,omitempty" validate:"omitempty,uuid"`
	Rating    int     `json:"rating" validate:"required,min=1,max=5"`
	Title     *string `json:"title,omitempty"`
	Content   *string `json:"content,omitempty"`
}

func (req createReviewRequest) toInput() (reviewsvc.CreateInput, error) {
	productID, err := parseOptionalUUID(req.ProductID, "product id")
	if err != nil {
		return reviewsvc.CreateInput{}, err
	}
	vendorID, err := parseOptionalUUID(req.VendorID, "vendor id")
	if err != nil {
		return reviewsvc.CreateInput{}, err
	}
	orderID, err := parseOptionalUUID(req.OrderID, "order id")
	if err != nil {
		return reviewsvc.CreateInput{}, err
	}

	return reviewsvc.CreateInput{
		ProductID: productID,
		VendorID:  vendorID,
		OrderID:   orderID,
		Rating:    req.Rating,
		Title:     req.Title,
		Content:   req.Content,
	}, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	parsed, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return &parsed, nil
}

// CreateReview records customer feedback on a product or vendor.
func CreateReview(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		review, err := svc.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, review)
	}
}

// ListProductReviews serves the published reviews for one product.
func ListProductReviews(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reviews, err := svc.ListForProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reviews)
	}
}

// ListVendorReviews serves the published reviews for one vendor.
func ListVendorReviews(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := validators.ParsePathUUID(r, "vendorID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reviews, err := svc.ListForVendor(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reviews)
	}
}

type flagReviewRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// FlagReview pulls a review from public lists pending moderation. Admin only.
func FlagReview(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviewID, err := validators.ParsePathUUID(r, "reviewID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload flagReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		review, err := svc.Flag(r.Context(), middleware.PrincipalFromContext(r.Context()), reviewID, strings.TrimSpace(payload.Reason))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, review)
	}
}

// UnflagReview restores a flagged review to public lists. Admin only.
func UnflagReview(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviewID, err := validators.ParsePathUUID(r, "reviewID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		review, err := svc.Unflag(r.Context(), middleware.PrincipalFromContext(r.Context()), reviewID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, review)
	}
}
