package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maxmagma/wedstay-backend/pkg/enums"
	"github.com/maxmagma/wedstay-backend/pkg/types"
)

// Order captures a checkout with an immutable line item snapshot. Prices
// inside Items are frozen at checkout time and never re-read from products.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        *uuid.UUID        `gorm:"column:user_id;type:uuid"`
	OrderNumber   string            `gorm:"column:order_number;not null;uniqueIndex"`
	Items         types.OrderItems  `gorm:"column:items;type:jsonb;not null"`
	Subtotal      decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Tax           decimal.Decimal   `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	Shipping      decimal.Decimal   `gorm:"column:shipping;type:numeric(12,2);not null;default:0"`
	Discount      decimal.Decimal   `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Total         decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Currency      string            `gorm:"column:currency;not null;default:'USD'"`
	CustomerEmail string            `gorm:"column:customer_email;not null"`
	CustomerPhone *string           `gorm:"column:customer_phone"`
	CustomerName  *string           `gorm:"column:customer_name"`
	EventDate     *time.Time        `gorm:"column:event_date"`
	EventLocation *string           `gorm:"column:event_location"`
	EventType     *string           `gorm:"column:event_type"`
	Status        enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
