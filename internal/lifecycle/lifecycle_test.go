package lifecycle

import (
	"testing"

	"github.com/maxmagma/wedstay-backend/pkg/enums"
	"github.com/maxmagma/wedstay-backend/pkg/errors"
)

func TestVendorTransitions(t *testing.T) {
	cases := []struct {
		name string
		from enums.VendorStatus
		to   enums.VendorStatus
		ok   bool
	}{
		{"pending to approved", enums.VendorStatusPending, enums.VendorStatusApproved, true},
		{"pending to rejected", enums.VendorStatusPending, enums.VendorStatusRejected, true},
		{"approved to suspended", enums.VendorStatusApproved, enums.VendorStatusSuspended, true},
		{"suspended is terminal", enums.VendorStatusSuspended, enums.VendorStatusApproved, false},
		{"rejected to pending reapply", enums.VendorStatusRejected, enums.VendorStatusPending, true},
		{"approved to rejected", enums.VendorStatusApproved, enums.VendorStatusRejected, false},
		{"pending to suspended", enums.VendorStatusPending, enums.VendorStatusSuspended, false},
		{"rejected to approved", enums.VendorStatusRejected, enums.VendorStatusApproved, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanVendor(tc.from, tc.to); got != tc.ok {
				t.Fatalf("CanVendor(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
			}
			err := StepVendor(tc.from, tc.to)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok {
				typed := errors.As(err)
				if typed == nil || typed.Code() != errors.CodeStateConflict {
					t.Fatalf("expected STATE_CONFLICT, got %v", err)
				}
			}
		})
	}
}

func TestProductTransitions(t *testing.T) {
	cases := []struct {
		name string
		from enums.ProductStatus
		to   enums.ProductStatus
		ok   bool
	}{
		{"draft to pending", enums.ProductStatusDraft, enums.ProductStatusPending, true},
		{"pending to approved", enums.ProductStatusPending, enums.ProductStatusApproved, true},
		{"pending to rejected", enums.ProductStatusPending, enums.ProductStatusRejected, true},
		{"approved to archived", enums.ProductStatusApproved, enums.ProductStatusArchived, true},
		{"rejected resubmit", enums.ProductStatusRejected, enums.ProductStatusPending, true},
		{"draft to approved skips review", enums.ProductStatusDraft, enums.ProductStatusApproved, false},
		{"archived is terminal", enums.ProductStatusArchived, enums.ProductStatusPending, false},
		{"approved to draft", enums.ProductStatusApproved, enums.ProductStatusDraft, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanProduct(tc.from, tc.to); got != tc.ok {
				t.Fatalf("CanProduct(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
			}
		})
	}
}

func TestInquiryTerminalStates(t *testing.T) {
	for _, terminal := range []enums.InquiryStatus{enums.InquiryStatusCancelled, enums.InquiryStatusCompleted} {
		for _, to := range []enums.InquiryStatus{
			enums.InquiryStatusPending,
			enums.InquiryStatusQuoted,
			enums.InquiryStatusBooked,
			enums.InquiryStatusCancelled,
			enums.InquiryStatusCompleted,
		} {
			if CanInquiry(terminal, to) {
				t.Fatalf("terminal state %s should not transition to %s", terminal, to)
			}
		}
	}

	if !CanInquiry(enums.InquiryStatusPending, enums.InquiryStatusQuoted) {
		t.Fatal("pending to quoted should be allowed")
	}
	if !CanInquiry(enums.InquiryStatusQuoted, enums.InquiryStatusBooked) {
		t.Fatal("quoted to booked should be allowed")
	}
	if !CanInquiry(enums.InquiryStatusQuoted, enums.InquiryStatusCancelled) {
		t.Fatal("quoted to cancelled should be allowed")
	}
	if CanInquiry(enums.InquiryStatusPending, enums.InquiryStatusBooked) {
		t.Fatal("pending to booked should skip quoting and be rejected")
	}
}

func TestOrderForwardOnly(t *testing.T) {
	forward := []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusConfirmed,
		enums.OrderStatusProcessing,
		enums.OrderStatusCompleted,
	}
	for i := 0; i < len(forward)-1; i++ {
		if !CanOrder(forward[i], forward[i+1]) {
			t.Fatalf("expected %s to %s to be allowed", forward[i], forward[i+1])
		}
		if CanOrder(forward[i+1], forward[i]) {
			t.Fatalf("backward edge %s to %s should be rejected", forward[i+1], forward[i])
		}
	}

	if !CanOrder(enums.OrderStatusCompleted, enums.OrderStatusRefunded) {
		t.Fatal("completed to refunded should be allowed")
	}
	if CanOrder(enums.OrderStatusProcessing, enums.OrderStatusRefunded) {
		t.Fatal("refund requires a completed order")
	}
}

func TestOrderCancellable(t *testing.T) {
	cancellable := []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusConfirmed,
		enums.OrderStatusProcessing,
	}
	for _, st := range cancellable {
		if !OrderCancellable(st) {
			t.Fatalf("expected %s to be cancellable", st)
		}
	}
	for _, st := range []enums.OrderStatus{enums.OrderStatusCompleted, enums.OrderStatusCancelled, enums.OrderStatusRefunded} {
		if OrderCancellable(st) {
			t.Fatalf("expected %s to not be cancellable", st)
		}
	}
}
