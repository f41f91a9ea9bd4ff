package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/maxmagma/wedstay-backend/pkg/enums"
)

// Product is a vendor listing. VendorID and Handle never change after
// creation; services reject attempts to touch them.
type Product struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID        uuid.UUID           `gorm:"column:vendor_id;type:uuid;not null"`
	Name            string              `gorm:"column:name;not null"`
	Slug            string              `gorm:"column:slug;not null"`
	Handle          string              `gorm:"column:handle;not null;uniqueIndex"`
	Description     *string             `gorm:"column:description"`
	Category        *string             `gorm:"column:category"`
	Subcategory     *string             `gorm:"column:subcategory"`
	BasePrice       decimal.Decimal     `gorm:"column:base_price;type:numeric(12,2);not null;default:0"`
	CompareAtPrice  decimal.NullDecimal `gorm:"column:compare_at_price;type:numeric(12,2)"`
	PriceType       string              `gorm:"column:price_type;not null;default:'fixed'"`
	Currency        string              `gorm:"column:currency;not null;default:'USD'"`
	Quantity        int                 `gorm:"column:quantity;not null;default:0"`
	TrackInventory  bool                `gorm:"column:track_inventory;not null;default:false"`
	MinimumOrder    int                 `gorm:"column:minimum_order;not null;default:1"`
	Images          pq.StringArray      `gorm:"column:images;type:text[]"`
	PrimaryImage    *string             `gorm:"column:primary_image"`
	StyleTags       pq.StringArray      `gorm:"column:style_tags;type:text[]"`
	Status          enums.ProductStatus `gorm:"column:status;type:product_status;not null;default:'draft'"`
	IsActive        bool                `gorm:"column:is_active;not null;default:true"`
	Featured        bool                `gorm:"column:featured;not null;default:false"`
	RejectionReason *string             `gorm:"column:rejection_reason"`
	PublishedAt     *time.Time          `gorm:"column:published_at"`
	Views           int                 `gorm:"column:views;not null;default:0"`
	Inquiries       int                 `gorm:"column:inquiries;not null;default:0"`
	CartAdds        int                 `gorm:"column:cart_adds;not null;default:0"`
	Orders          int                 `gorm:"column:orders;not null;default:0"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
