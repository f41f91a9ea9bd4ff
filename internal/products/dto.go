package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
)

// ProductDTO exposes safe product data in API responses.
type ProductDTO struct {
	ID              uuid.UUID           `json:"id"`
	VendorID        uuid.UUID           `json:"vendor_id"`
	Name            string              `json:"name"`
	Slug            string              `json:"slug"`
	Handle          string              `json:"handle"`
	Description     *string             `json:"description,omitempty"`
	Category        *string             `json:"category,omitempty"`
	Subcategory     *string             `json:"subcategory,omitempty"`
	BasePrice       decimal.Decimal     `json:"base_price"`
	CompareAtPrice  *decimal.Decimal    `json:"compare_at_price,omitempty"`
	PriceType       string              `json:"price_type"`
	Currency        string              `json:"currency"`
	Quantity        int                 `json:"quantity"`
	TrackInventory  bool                `json:"track_inventory"`
	MinimumOrder    int                 `json:"minimum_order"`
	Images          []string            `json:"images,omitempty"`
	PrimaryImage    *string             `json:"primary_image,omitempty"`
	StyleTags       []string            `json:"style_tags,omitempty"`
	Status          enums.ProductStatus `json:"status"`
	IsActive        bool                `json:"is_active"`
	Featured        bool                `json:"featured"`
	RejectionReason *string             `json:"rejection_reason,omitempty"`
	PublishedAt     *time.Time          `json:"published_at,omitempty"`
	Views           int                 `json:"views"`
	Inquiries       int                 `json:"inquiries"`
	CartAdds        int                 `json:"cart_adds"`
	Orders          int                 `json:"orders"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// FromModel maps the persisted product into a DTO.
func FromModel(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	dto := &ProductDTO{
		ID:              m.ID,
		VendorID:        m.VendorID,
		Name:            m.Name,
		Slug:            m.Slug,
		Handle:          m.Handle,
		Description:     m.Description,
		Category:        m.Category,
		Subcategory:     m.Subcategory,
		BasePrice:       m.BasePrice,
		PriceType:       m.PriceType,
		Currency:        m.Currency,
		Quantity:        m.Quantity,
		TrackInventory:  m.TrackInventory,
		MinimumOrder:    m.MinimumOrder,
		Images:          append([]string(nil), m.Images...),
		PrimaryImage:    m.PrimaryImage,
		StyleTags:       append([]string(nil), m.StyleTags...),
		Status:          m.Status,
		IsActive:        m.IsActive,
		Featured:        m.Featured,
		RejectionReason: m.RejectionReason,
		PublishedAt:     m.PublishedAt,
		Views:           m.Views,
		Inquiries:       m.Inquiries,
		CartAdds:        m.CartAdds,
		Orders:          m.Orders,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.CompareAtPrice.Valid {
		price := m.CompareAtPrice.Decimal
		dto.CompareAtPrice = &price
	}
	return dto
}

// FromModels maps a slice of products.
func FromModels(ms []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}
