// Package guard answers ownership and role questions for mutations. It is
// a pure predicate layer: no store access, no side effects. Callers resolve
// the entities first, ask the guard, and map the decision to an error
// before touching anything.
package guard

import (
	"github.com/google/uuid"

	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	"github.com/maxmagma/wedstay-backend/pkg/errors"
)

// Principal is the authenticated actor for a request. A nil *Principal
// means the request carried no credentials.
type Principal struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Decision is the tri-state outcome of a guard check.
type Decision int

const (
	DecisionAllowed Decision = iota
	DecisionUnauthenticated
	DecisionForbidden
)

// Allowed reports whether the check passed.
func (d Decision) Allowed() bool {
	return d == DecisionAllowed
}

// Err maps a denial to the error taxonomy. Allowed returns nil.
func (d Decision) Err() error {
	switch d {
	case DecisionAllowed:
		return nil
	case DecisionUnauthenticated:
		return errors.New(errors.CodeUnauthorized, "authentication required")
	default:
		return errors.New(errors.CodeForbidden, "not allowed to perform this action")
	}
}

// Admin requires the principal to hold the admin role. A principal without
// a profile row is a plain denial, never an error.
func Admin(p *Principal) Decision {
	if p == nil {
		return DecisionUnauthenticated
	}
	if p.Role != enums.UserRoleAdmin {
		return DecisionForbidden
	}
	return DecisionAllowed
}

// MutateVendor allows the owning user or an admin to mutate the vendor row.
func MutateVendor(p *Principal, vendor *models.Vendor) Decision {
	if p == nil {
		return DecisionUnauthenticated
	}
	if p.Role == enums.UserRoleAdmin {
		return DecisionAllowed
	}
	if vendor == nil {
		return DecisionForbidden
	}
	if vendor.UserID == p.UserID {
		return DecisionAllowed
	}
	return DecisionForbidden
}

// MutateProduct allows the product's owning vendor or an admin. The caller
// resolves ownedVendorID from the principal beforehand; uuid.Nil means the
// principal owns no vendor.
func MutateProduct(p *Principal, ownedVendorID uuid.UUID, product *models.Product) Decision {
	if p == nil {
		return DecisionUnauthenticated
	}
	if p.Role == enums.UserRoleAdmin {
		return DecisionAllowed
	}
	if product == nil || ownedVendorID == uuid.Nil {
		return DecisionForbidden
	}
	if product.VendorID == ownedVendorID {
		return DecisionAllowed
	}
	return DecisionForbidden
}

// RespondToInquiry allows a vendor to quote only when one of the inquiry's
// items resolves to a product it owns. itemVendorIDs is the resolved vendor
// set for the inquiry's product references.
func RespondToInquiry(p *Principal, ownedVendorID uuid.UUID, itemVendorIDs []uuid.UUID) Decision {
	if p == nil {
		return DecisionUnauthenticated
	}
	if p.Role == enums.UserRoleAdmin {
		return DecisionAllowed
	}
	if ownedVendorID == uuid.Nil {
		return DecisionForbidden
	}
	for _, id := range itemVendorIDs {
		if id == ownedVendorID {
			return DecisionAllowed
		}
	}
	return DecisionForbidden
}

// MutateOrder allows the order's linked customer or an admin. Guest
// orders (no linked user) are admin-managed only.
func MutateOrder(p *Principal, order *models.Order) Decision {
	if p == nil {
		return DecisionUnauthenticated
	}
	if p.Role == enums.UserRoleAdmin {
		return DecisionAllowed
	}
	if order == nil || order.UserID == nil {
		return DecisionForbidden
	}
	if *order.UserID == p.UserID {
		return DecisionAllowed
	}
	return DecisionForbidden
}

// MutateInquiry allows the inquiry's linked customer or an admin. Guest
// inquiries (no linked user) are admin-managed only.
func MutateInquiry(p *Principal, inquiry *models.Inquiry) Decision {
	if p == nil {
		return DecisionUnauthenticated
	}
	if p.Role == enums.UserRoleAdmin {
		return DecisionAllowed
	}
	if inquiry == nil || inquiry.UserID == nil {
		return DecisionForbidden
	}
	if *inquiry.UserID == p.UserID {
		return DecisionAllowed
	}
	return DecisionForbidden
}
