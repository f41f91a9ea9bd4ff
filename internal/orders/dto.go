package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	"github.com/maxmagma/wedstay-backend/pkg/types"
)

// OrderDTO exposes safe order data in API responses.
type OrderDTO struct {
	ID            uuid.UUID         `json:"id"`
	UserID        *uuid.UUID        `json:"user_id,omitempty"`
	OrderNumber   string            `json:"order_number"`
	Items         types.OrderItems  `json:"items"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	Tax           decimal.Decimal   `json:"tax"`
	Shipping      decimal.Decimal   `json:"shipping"`
	Discount      decimal.Decimal   `json:"discount"`
	Total         decimal.Decimal   `json:"total"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email"`
	CustomerPhone *string           `json:"customer_phone,omitempty"`
	CustomerName  *string           `json:"customer_name,omitempty"`
	EventDate     *time.Time        `json:"event_date,omitempty"`
	EventLocation *string           `json:"event_location,omitempty"`
	EventType     *string           `json:"event_type,omitempty"`
	Status        enums.OrderStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// FromModel maps the persisted order into a DTO.
func FromModel(m *models.Order) *OrderDTO {
	if m == nil {
		return nil
	}
	return &OrderDTO{
		ID:            m.ID,
		UserID:        m.UserID,
		OrderNumber:   m.OrderNumber,
		Items:         append(types.OrderItems(nil), m.Items...),
		Subtotal:      m.Subtotal,
		Tax:           m.Tax,
		Shipping:      m.Shipping,
		Discount:      m.Discount,
		Total:         m.Total,
		Currency:      m.Currency,
		CustomerEmail: m.CustomerEmail,
		CustomerPhone: m.CustomerPhone,
		CustomerName:  m.CustomerName,
		EventDate:     m.EventDate,
		EventLocation: m.EventLocation,
		EventType:     m.EventType,
		Status:        m.Status,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromModels maps a slice of orders.
func FromModels(ms []models.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}
