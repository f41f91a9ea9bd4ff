package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestOrderItemsSubtotal(t *testing.T) {
	items := OrderItems{
		{ProductID: uuid.New(), VendorID: uuid.New(), Name: "Arch", Price: decimal.RequireFromString("150.00"), Quantity: 2},
		{ProductID: uuid.New(), VendorID: uuid.New(), Name: "Runner", Price: decimal.RequireFromString("12.50"), Quantity: 4},
	}
	if got := items.Subtotal(); !got.Equal(decimal.RequireFromString("350.00")) {
		t.Fatalf("expected subtotal 350.00, got %s", got)
	}
}

func TestOrderItemsVendorShare(t *testing.T) {
	vendorA := uuid.New()
	vendorB := uuid.New()
	items := OrderItems{
		{ProductID: uuid.New(), VendorID: vendorA, Price: decimal.RequireFromString("100"), Quantity: 1},
		{ProductID: uuid.New(), VendorID: vendorB, Price: decimal.RequireFromString("40"), Quantity: 3},
	}
	if got := items.VendorShare(vendorB); !got.Equal(decimal.RequireFromString("120")) {
		t.Fatalf("expected vendor share 120, got %s", got)
	}
	if got := items.VendorShare(uuid.New()); !got.IsZero() {
		t.Fatalf("expected zero share for unknown vendor, got %s", got)
	}
}

func TestOrderItemsScanRoundTrip(t *testing.T) {
	productID := uuid.New()
	items := OrderItems{{ProductID: productID, VendorID: uuid.New(), Name: "Centerpiece", Price: decimal.RequireFromString("35.99"), Quantity: 10}}

	raw, err := items.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var decoded OrderItems
	if err := decoded.Scan(raw); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(decoded) != 1 || !decoded.ContainsProduct(productID) {
		t.Fatalf("round trip lost data: %+v", decoded)
	}
	if !decoded[0].Price.Equal(items[0].Price) {
		t.Fatalf("price mismatch: %s vs %s", decoded[0].Price, items[0].Price)
	}
}

func TestVendorResponsesHasVendor(t *testing.T) {
	vendorID := uuid.New()
	responses := VendorResponses{{VendorID: vendorID, QuotedPrice: decimal.RequireFromString("500")}}
	if !responses.HasVendor(vendorID) {
		t.Fatal("expected vendor to be present")
	}
	if responses.HasVendor(uuid.New()) {
		t.Fatal("unexpected vendor match")
	}
}
