package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/maxmagma/wedstay-backend/pkg/enums"
)

// Vendor is the canonical seller tenant.
type Vendor struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	CompanyName       string              `gorm:"column:company_name;not null"`
	Slug              string              `gorm:"column:slug;not null;uniqueIndex"`
	Description       *string             `gorm:"column:description"`
	Phone             *string             `gorm:"column:phone"`
	Email             *string             `gorm:"column:email"`
	Website           *string             `gorm:"column:website"`
	ServiceAreas      pq.StringArray      `gorm:"column:service_areas;type:text[]"`
	YearsInBusiness   *int                `gorm:"column:years_in_business"`
	InsuranceVerified bool                `gorm:"column:insurance_verified;not null;default:false"`
	BusinessLicense   *string             `gorm:"column:business_license"`
	Status            enums.VendorStatus  `gorm:"column:status;type:vendor_status;not null;default:'pending'"`
	ApprovedAt        *time.Time          `gorm:"column:approved_at"`
	RejectionReason   *string             `gorm:"column:rejection_reason"`
	CommissionRate    decimal.Decimal     `gorm:"column:commission_rate;type:numeric(5,2);not null;default:10.00"`
	TotalProducts     int                 `gorm:"column:total_products;not null;default:0"`
	TotalInquiries    int                 `gorm:"column:total_inquiries;not null;default:0"`
	TotalRevenue      decimal.Decimal     `gorm:"column:total_revenue;type:numeric(12,2);not null;default:0"`
	AverageRating     decimal.NullDecimal `gorm:"column:average_rating;type:numeric(3,2)"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
