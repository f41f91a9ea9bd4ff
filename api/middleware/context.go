package middleware

import (
	"context"

	"github.com/maxmagma/wedstay-backend/internal/guard"
)

type contextKey string

const (
	ctxPrincipal contextKey = "principal"
	ctxVendorID  contextKey = "vendor_id"
)

// PrincipalFromContext returns the authenticated principal, or nil for
// guest requests.
func PrincipalFromContext(ctx context.Context) *guard.Principal {
	if ctx == nil {
		return nil
	}
	if p, ok := ctx.Value(ctxPrincipal).(*guard.Principal); ok {
		return p
	}
	return nil
}

// VendorIDFromContext returns the vendor id carried by the access token,
// empty when the principal owns no vendor.
func VendorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxVendorID).(string); ok {
		return v
	}
	return ""
}

// WithPrincipal injects the principal into the context.
func WithPrincipal(ctx context.Context, p *guard.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPrincipal, p)
}

// WithVendorID injects the vendor identifier into the context.
func WithVendorID(ctx context.Context, vendorID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxVendorID, vendorID)
}
