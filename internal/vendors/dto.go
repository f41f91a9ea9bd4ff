package vendors

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
)

// VendorDTO exposes safe vendor data in API responses.
type VendorDTO struct {
	ID                uuid.UUID          `json:"id"`
	UserID            uuid.UUID          `json:"user_id"`
	CompanyName       string             `json:"company_name"`
	Slug              string             `json:"slug"`
	Description       *string            `json:"description,omitempty"`
	Phone             *string            `json:"phone,omitempty"`
	Email             *string            `json:"email,omitempty"`
	Website           *string            `json:"website,omitempty"`
	ServiceAreas      []string           `json:"service_areas,omitempty"`
	YearsInBusiness   *int               `json:"years_in_business,omitempty"`
	InsuranceVerified bool               `json:"insurance_verified"`
	Status            enums.VendorStatus `json:"status"`
	ApprovedAt        *time.Time         `json:"approved_at,omitempty"`
	RejectionReason   *string            `json:"rejection_reason,omitempty"`
	CommissionRate    decimal.Decimal    `json:"commission_rate"`
	TotalProducts     int                `json:"total_products"`
	TotalInquiries    int                `json:"total_inquiries"`
	TotalRevenue      decimal.Decimal    `json:"total_revenue"`
	AverageRating     *decimal.Decimal   `json:"average_rating,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// FromModel maps the persisted vendor into a DTO.
func FromModel(m *models.Vendor) *VendorDTO {
	if m == nil {
		return nil
	}
	dto := &VendorDTO{
		ID:                m.ID,
		UserID:            m.UserID,
		CompanyName:       m.CompanyName,
		Slug:              m.Slug,
		Description:       m.Description,
		Phone:             m.Phone,
		Email:             m.Email,
		Website:           m.Website,
		ServiceAreas:      append([]string(nil), m.ServiceAreas...),
		YearsInBusiness:   m.YearsInBusiness,
		InsuranceVerified: m.InsuranceVerified,
		Status:            m.Status,
		ApprovedAt:        m.ApprovedAt,
		RejectionReason:   m.RejectionReason,
		CommissionRate:    m.CommissionRate,
		TotalProducts:     m.TotalProducts,
		TotalInquiries:    m.TotalInquiries,
		TotalRevenue:      m.TotalRevenue,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.AverageRating.Valid {
		rating := m.AverageRating.Decimal
		dto.AverageRating = &rating
	}
	return dto
}
