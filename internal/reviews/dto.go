package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/maxmagma/wedstay-backend/pkg/db/models"
)

// ReviewDTO exposes safe review data in API responses.
type ReviewDTO struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             uuid.UUID  `json:"user_id"`
	ProductID          *uuid.UUID `json:"product_id,omitempty"`
	VendorID           *uuid.UUID `json:"vendor_id,omitempty"`
	OrderID            *uuid.UUID `json:"order_id,omitempty"`
	Rating             int        `json:"rating"`
	Title              *string    `json:"title,omitempty"`
	Content            *string    `json:"content,omitempty"`
	IsVerifiedPurchase bool       `json:"is_verified_purchase"`
	IsPublished        bool       `json:"is_published"`
	Flagged            bool       `json:"flagged"`
	FlagReason         *string    `json:"flag_reason,omitempty"`
	HelpfulCount       int        `json:"helpful_count"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// FromModel maps the persisted review into a DTO.
func FromModel(m *models.Review) *ReviewDTO {
	if m == nil {
		return nil
	}
	return &ReviewDTO{
		ID:                 m.ID,
		UserID:             m.UserID,
		ProductID:          m.ProductID,
		VendorID:           m.VendorID,
		OrderID:            m.OrderID,
		Rating:             m.Rating,
		Title:              m.Title,
		Content:            m.Content,
		IsVerifiedPurchase: m.IsVerifiedPurchase,
		IsPublished:        m.IsPublished,
		Flagged:            m.Flagged,
		FlagReason:         m.FlagReason,
		HelpfulCount:       m.HelpfulCount,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// FromModels maps a slice of reviews.
func FromModels(ms []models.Review) []ReviewDTO {
	dtos := make([]ReviewDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}
