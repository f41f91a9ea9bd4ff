package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorResponse is one vendor's quote on an inquiry. The list is append-only.
type VendorResponse struct {
	VendorID    uuid.UUID       `json:"vendorId"`
	QuotedPrice decimal.Decimal `json:"quotedPrice"`
	Message     string          `json:"message"`
	RespondedAt time.Time       `json:"respondedAt"`
}

// VendorResponses is the quote history persisted as JSONB.
type VendorResponses []VendorResponse

// Value marshals the list into JSON for Postgres.
func (v VendorResponses) Value() (driver.Value, error) {
	if v == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the list.
func (v *VendorResponses) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}

	var raw []byte
	switch val := value.(type) {
	case string:
		raw = []byte(val)
	case []byte:
		raw = val
	default:
		return fmt.Errorf("vendor responses: unsupported scan type %T", value)
	}

	var result VendorResponses
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*v = result
	return nil
}

// HasVendor reports whether the vendor already appears in the history.
func (v VendorResponses) HasVendor(vendorID uuid.UUID) bool {
	for _, resp := range v {
		if resp.VendorID == vendorID {
			return true
		}
	}
	return false
}
