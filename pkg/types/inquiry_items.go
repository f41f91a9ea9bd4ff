package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// InquiryItem references a product a customer is asking about.
type InquiryItem struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Notes     string    `json:"notes,omitempty"`
}

// InquiryItems is the ordered product list persisted as JSONB.
type InquiryItems []InquiryItem

// Value marshals the list into JSON for Postgres.
func (i InquiryItems) Value() (driver.Value, error) {
	if i == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(i)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the list.
func (i *InquiryItems) Scan(value interface{}) error {
	if value == nil {
		*i = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("inquiry items: unsupported scan type %T", value)
	}

	var result InquiryItems
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*i = result
	return nil
}
