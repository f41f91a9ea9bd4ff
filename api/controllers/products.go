package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maxmagma/wedstay-backend/api/middleware"
	"github.com/maxmagma/wedstay-backend/api/responses"
	"github.com/maxmagma/wedstay-backend/api/validators"
	"github.com/maxmagma/wedstay-backend/internal/guard"
	productsvc "github.com/maxmagma/wedstay-backend/internal/products"
	pkgerrors "github.com/maxmagma/wedstay-backend/pkg/errors"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
	"github.com/maxmagma/wedstay-backend/pkg/pagination"
)

// ListPublicProducts serves the approved, active catalog.
func ListPublicProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		products, err := svc.ListPublic(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// GetPublicProduct resolves an approved listing by its URL handle.
func GetPublicProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle := strings.TrimSpace(chi.URLParam(r, "handle"))
		if handle == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product handle is required"))
			return
		}

		product, err := svc.GetPublicByHandle(r.Context(), handle)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ListMyProducts serves the authenticated vendor's listings in every status.
func ListMyProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListMine(r.Context(), middleware.PrincipalFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

type createProductRequest struct {
	Name           string   `json:"name" validate:"required"`
	Description    *string  `json:"description,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Subcategory    *string  `json:"subcategory,omitempty"`
	BasePrice      string   `json:"base_price" validate:"required"`
	CompareAtPrice *string  `json:"compare_at_price,omitempty"`
	PriceType      *string  `json:"price_type,omitempty" validate:"omitempty,oneof=fixed starting_at per_person per_hour"`
	Currency       *string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	Quantity       *int     `json:"quantity,omitempty" validate:"omitempty,min=0"`
	TrackInventory *bool    `json:"track_inventory,omitempty"`
	MinimumOrder   *int     `json:"minimum_order,omitempty" validate:"omitempty,min=1"`
	Images         []string `json:"images,omitempty"`
	PrimaryImage   *string  `json:"primary_image,omitempty"`
	StyleTags      []string `json:"style_tags,omitempty"`
}

func (req createProductRequest) toInput() (productsvc.CreateInput, error) {
	base, err := decimal.NewFromString(strings.TrimSpace(req.BasePrice))
	if err != nil {
		return productsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid base price")
	}

	var compareAt *decimal.Decimal
	if req.CompareAtPrice != nil {
		parsed, err := decimal.NewFromString(strings.TrimSpace(*req.CompareAtPrice))
		if err != nil {
			return productsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid compare-at price")
		}
		compareAt = &parsed
	}

	return productsvc.CreateInput{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Category:       req.Category,
		Subcategory:    req.Subcategory,
		BasePrice:      base,
		CompareAtPrice: compareAt,
		PriceType:      req.PriceType,
		Currency:       req.Currency,
		Quantity:       req.Quantity,
		TrackInventory: req.TrackInventory,
		MinimumOrder:   req.MinimumOrder,
		Images:         req.Images,
		PrimaryImage:   req.PrimaryImage,
		StyleTags:      req.StyleTags,
	}, nil
}

// CreateProduct handles listing creation for approved vendors.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Name           *string   `json:"name,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Category       *string   `json:"category,omitempty"`
	Subcategory    *string   `json:"subcategory,omitempty"`
	BasePrice      *string   `json:"base_price,omitempty"`
	CompareAtPrice *string   `json:"compare_at_price,omitempty"`
	PriceType      *string   `json:"price_type,omitempty" validate:"omitempty,oneof=fixed starting_at per_person per_hour"`
	Currency       *string   `json:"currency,omitempty" validate:"omitempty,len=3"`
	Quantity       *int      `json:"quantity,omitempty" validate:"omitempty,min=0"`
	TrackInventory *bool     `json:"track_inventory,omitempty"`
	MinimumOrder   *int      `json:"minimum_order,omitempty" validate:"omitempty,min=1"`
	Images         *[]string `json:"images,omitempty"`
	PrimaryImage   *string   `json:"primary_image,omitempty"`
	StyleTags      *[]string `json:"style_tags,omitempty"`
	IsActive       *bool     `json:"is_active,omitempty"`
}

func (req updateProductRequest) toInput() (productsvc.UpdateInput, error) {
	input := productsvc.UpdateInput{
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		Subcategory:    req.Subcategory,
		PriceType:      req.PriceType,
		Currency:       req.Currency,
		Quantity:       req.Quantity,
		TrackInventory: req.TrackInventory,
		MinimumOrder:   req.MinimumOrder,
		Images:         req.Images,
		PrimaryImage:   req.PrimaryImage,
		StyleTags:      req.StyleTags,
		IsActive:       req.IsActive,
	}

	if req.BasePrice != nil {
		parsed, err := decimal.NewFromString(strings.TrimSpace(*req.BasePrice))
		if err != nil {
			return productsvc.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid base price")
		}
		input.BasePrice = &parsed
	}
	if req.CompareAtPrice != nil {
		parsed, err := decimal.NewFromString(strings.TrimSpace(*req.CompareAtPrice))
		if err != nil {
			return productsvc.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid compare-at price")
		}
		input.CompareAtPrice = &parsed
	}
	return input, nil
}

// UpdateProduct applies vendor edits to an owned listing.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), middleware.PrincipalFromContext(r.Context()), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// SubmitProduct moves a draft or rejected listing into review.
func SubmitProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return productTransition(logg, svc.Submit)
}

// ApproveProduct publishes a pending listing. Admin only.
func ApproveProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return productTransition(logg, svc.Approve)
}

type rejectProductRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// RejectProduct returns a pending listing to its vendor with a reason.
func RejectProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rejectProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Reject(r.Context(), middleware.PrincipalFromContext(r.Context()), productID, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ArchiveProduct retires a listing from the public catalog.
func ArchiveProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return productTransition(logg, svc.Archive)
}

// DeleteProduct removes a listing that never reached the catalog.
func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.PrincipalFromContext(r.Context()), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func productTransition(logg *logger.Logger, op func(ctx context.Context, principal *guard.Principal, productID uuid.UUID) (*productsvc.ProductDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := op(r.Context(), middleware.PrincipalFromContext(r.Context()), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
