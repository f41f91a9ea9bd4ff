package enums

import "fmt"

// CounterEventKind names the underlying event a denormalized counter is fed by.
type CounterEventKind string

const (
	CounterEventView         CounterEventKind = "view"
	CounterEventInquiry      CounterEventKind = "inquiry"
	CounterEventCartAdd      CounterEventKind = "cart_add"
	CounterEventOrder        CounterEventKind = "order"
	CounterEventRevenue      CounterEventKind = "revenue"
	CounterEventProductCount CounterEventKind = "product_count"
)

var validCounterEventKinds = []CounterEventKind{
	CounterEventView,
	CounterEventInquiry,
	CounterEventCartAdd,
	CounterEventOrder,
	CounterEventRevenue,
	CounterEventProductCount,
}

// String implements fmt.Stringer.
func (c CounterEventKind) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CounterEventKind.
func (c CounterEventKind) IsValid() bool {
	for _, candidate := range validCounterEventKinds {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCounterEventKind converts raw input into a CounterEventKind.
func ParseCounterEventKind(value string) (CounterEventKind, error) {
	for _, candidate := range validCounterEventKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid counter event kind %q", value)
}

// CounterTargetKind identifies which entity a counter event targets.
type CounterTargetKind string

const (
	CounterTargetProduct CounterTargetKind = "product"
	CounterTargetVendor  CounterTargetKind = "vendor"
)

var validCounterTargetKinds = []CounterTargetKind{
	CounterTargetProduct,
	CounterTargetVendor,
}

// String implements fmt.Stringer.
func (c CounterTargetKind) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CounterTargetKind.
func (c CounterTargetKind) IsValid() bool {
	for _, candidate := range validCounterTargetKinds {
		if candidate == c {
			return true
		}
	}
	return false
}
