package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is customer feedback on a product, a vendor, or both.
type Review struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID  `gorm:"column:user_id;type:uuid;not null"`
	ProductID          *uuid.UUID `gorm:"column:product_id;type:uuid"`
	VendorID           *uuid.UUID `gorm:"column:vendor_id;type:uuid"`
	OrderID            *uuid.UUID `gorm:"column:order_id;type:uuid"`
	Rating             int        `gorm:"column:rating;not null"`
	Title              *string    `gorm:"column:title"`
	Content            *string    `gorm:"column:content"`
	IsVerifiedPurchase bool       `gorm:"column:is_verified_purchase;not null;default:false"`
	IsPublished        bool       `gorm:"column:is_published;not null;default:true"`
	Flagged            bool       `gorm:"column:flagged;not null;default:false"`
	FlagReason         *string    `gorm:"column:flag_reason"`
	HelpfulCount       int        `gorm:"column:helpful_count;not null;default:0"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
