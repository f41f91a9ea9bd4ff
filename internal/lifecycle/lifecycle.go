// Package lifecycle holds the status transition tables for every entity
// that moves through a moderation or fulfillment pipeline. Services call
// Step before touching the store; an illegal edge is a business failure,
// not an infrastructure one.
package lifecycle

import (
	"fmt"

	"github.com/maxmagma/wedstay-backend/pkg/enums"
	"github.com/maxmagma/wedstay-backend/pkg/errors"
)

var vendorTransitions = map[enums.VendorStatus][]enums.VendorStatus{
	enums.VendorStatusPending:   {enums.VendorStatusApproved, enums.VendorStatusRejected},
	enums.VendorStatusApproved:  {enums.VendorStatusSuspended},
	enums.VendorStatusRejected:  {enums.VendorStatusPending},
	enums.VendorStatusSuspended: nil,
}

var productTransitions = map[enums.ProductStatus][]enums.ProductStatus{
	enums.ProductStatusDraft:    {enums.ProductStatusPending},
	enums.ProductStatusPending:  {enums.ProductStatusApproved, enums.ProductStatusRejected},
	enums.ProductStatusApproved: {enums.ProductStatusArchived},
	enums.ProductStatusRejected: {enums.ProductStatusPending},
	enums.ProductStatusArchived: nil,
}

var inquiryTransitions = map[enums.InquiryStatus][]enums.InquiryStatus{
	enums.InquiryStatusPending:   {enums.InquiryStatusQuoted, enums.InquiryStatusCancelled},
	enums.InquiryStatusQuoted:    {enums.InquiryStatusBooked, enums.InquiryStatusCancelled},
	enums.InquiryStatusBooked:    {enums.InquiryStatusCompleted},
	enums.InquiryStatusCancelled: nil,
	enums.InquiryStatusCompleted: nil,
}

var orderTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:  {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusCompleted, enums.OrderStatusCancelled},
	enums.OrderStatusCompleted:  {enums.OrderStatusRefunded},
	enums.OrderStatusCancelled:  nil,
	enums.OrderStatusRefunded:   nil,
}

// CanVendor reports whether the vendor status edge exists.
func CanVendor(from, to enums.VendorStatus) bool {
	return contains(vendorTransitions[from], to)
}

// CanProduct reports whether the product status edge exists.
func CanProduct(from, to enums.ProductStatus) bool {
	return contains(productTransitions[from], to)
}

// CanInquiry reports whether the inquiry status edge exists.
func CanInquiry(from, to enums.InquiryStatus) bool {
	return contains(inquiryTransitions[from], to)
}

// CanOrder reports whether the order status edge exists.
func CanOrder(from, to enums.OrderStatus) bool {
	return contains(orderTransitions[from], to)
}

// StepVendor validates a vendor status transition.
func StepVendor(from, to enums.VendorStatus) error {
	if !CanVendor(from, to) {
		return invalidTransition("vendor", string(from), string(to))
	}
	return nil
}

// StepProduct validates a product status transition.
func StepProduct(from, to enums.ProductStatus) error {
	if !CanProduct(from, to) {
		return invalidTransition("product", string(from), string(to))
	}
	return nil
}

// StepInquiry validates an inquiry status transition.
func StepInquiry(from, to enums.InquiryStatus) error {
	if !CanInquiry(from, to) {
		return invalidTransition("inquiry", string(from), string(to))
	}
	return nil
}

// StepOrder validates an order status transition.
func StepOrder(from, to enums.OrderStatus) error {
	if !CanOrder(from, to) {
		return invalidTransition("order", string(from), string(to))
	}
	return nil
}

// OrderCancellable reports whether an order can still be cancelled from
// the given status. Completed and terminal orders cannot.
func OrderCancellable(from enums.OrderStatus) bool {
	return CanOrder(from, enums.OrderStatusCancelled)
}

func invalidTransition(entity, from, to string) error {
	return errors.New(
		errors.CodeStateConflict,
		fmt.Sprintf("invalid %s transition from %s to %s", entity, from, to),
	)
}

func contains[S ~string](list []S, target S) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}
