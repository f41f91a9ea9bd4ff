package inquiries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	"github.com/maxmagma/wedstay-backend/pkg/types"
)

// InquiryDTO exposes safe inquiry data in API responses.
type InquiryDTO struct {
	ID              uuid.UUID             `json:"id"`
	UserID          *uuid.UUID            `json:"user_id,omitempty"`
	FullName        string                `json:"full_name"`
	Email           string                `json:"email"`
	Phone           *string               `json:"phone,omitempty"`
	EventDate       *time.Time            `json:"event_date,omitempty"`
	EventType       *string               `json:"event_type,omitempty"`
	VenueName       *string               `json:"venue_name,omitempty"`
	VenueLocation   *string               `json:"venue_location,omitempty"`
	GuestCount      *int                  `json:"guest_count,omitempty"`
	Items           types.InquiryItems    `json:"items"`
	TotalValue      decimal.Decimal       `json:"total_value"`
	Status          enums.InquiryStatus   `json:"status"`
	VendorResponses types.VendorResponses `json:"vendor_responses,omitempty"`
	CustomerNotes   *string               `json:"customer_notes,omitempty"`
	Source          *string               `json:"source,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// FromModel maps the persisted inquiry into a DTO.
func FromModel(m *models.Inquiry) *InquiryDTO {
	if m == nil {
		return nil
	}
	return &InquiryDTO{
		ID:              m.ID,
		UserID:          m.UserID,
		FullName:        m.FullName,
		Email:           m.Email,
		Phone:           m.Phone,
		EventDate:       m.EventDate,
		EventType:       m.EventType,
		VenueName:       m.VenueName,
		VenueLocation:   m.VenueLocation,
		GuestCount:      m.GuestCount,
		Items:           append(types.InquiryItems(nil), m.Items...),
		TotalValue:      m.TotalValue,
		Status:          m.Status,
		VendorResponses: append(types.VendorResponses(nil), m.VendorResponses...),
		CustomerNotes:   m.CustomerNotes,
		Source:          m.Source,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromModels maps a slice of inquiries.
func FromModels(ms []models.Inquiry) []InquiryDTO {
	dtos := make([]InquiryDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}
