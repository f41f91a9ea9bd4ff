package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is an immutable snapshot of a purchased product at checkout time.
type OrderItem struct {
	ProductID uuid.UUID       `json:"productId"`
	VendorID  uuid.UUID       `json:"vendorId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderItems is the purchase snapshot persisted as JSONB.
type OrderItems []OrderItem

// Value marshals the snapshot into JSON for Postgres.
func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the snapshot.
func (o *OrderItems) Scan(value interface{}) error {
	if value == nil {
		*o = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("order items: unsupported scan type %T", value)
	}

	var result OrderItems
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*o = result
	return nil
}

// Subtotal sums price times quantity across the snapshot.
func (o OrderItems) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// VendorShare sums the snapshot value attributable to a single vendor.
func (o OrderItems) VendorShare(vendorID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, item := range o {
		if item.VendorID == vendorID {
			total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	return total
}

// ContainsProduct reports whether the snapshot references the product.
func (o OrderItems) ContainsProduct(productID uuid.UUID) bool {
	for _, item := range o {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
