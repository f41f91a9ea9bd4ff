package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maxmagma/wedstay-backend/pkg/enums"
	"github.com/maxmagma/wedstay-backend/pkg/types"
)

// Inquiry is a customer request for quotes. UserID is nil for guest
// submissions; VendorResponses is append-only.
type Inquiry struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          *uuid.UUID            `gorm:"column:user_id;type:uuid"`
	FullName        string                `gorm:"column:full_name;not null"`
	Email           string                `gorm:"column:email;not null"`
	Phone           *string               `gorm:"column:phone"`
	EventDate       *time.Time            `gorm:"column:event_date"`
	EventType       *string               `gorm:"column:event_type"`
	VenueName       *string               `gorm:"column:venue_name"`
	VenueLocation   *string               `gorm:"column:venue_location"`
	GuestCount      *int                  `gorm:"column:guest_count"`
	Items           types.InquiryItems    `gorm:"column:items;type:jsonb;not null"`
	TotalValue      decimal.Decimal       `gorm:"column:total_value;type:numeric(12,2);not null;default:0"`
	Status          enums.InquiryStatus   `gorm:"column:status;type:inquiry_status;not null;default:'pending'"`
	VendorResponses types.VendorResponses `gorm:"column:vendor_responses;type:jsonb"`
	CustomerNotes   *string               `gorm:"column:customer_notes"`
	Source          *string               `gorm:"column:source"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
