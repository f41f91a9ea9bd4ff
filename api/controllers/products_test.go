package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maxmagma/wedstay-backend/api/middleware"
	"github.com/maxmagma/wedstay-backend/internal/guard"
	productsvc "github.com/maxmagma/wedstay-backend/internal/products"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	"github.com/maxmagma/wedstay-backend/pkg/pagination"
)

type stubProductService struct {
	created   *productsvc.CreateInput
	submitted []uuid.UUID
}

func (s *stubProductService) Create(ctx context.Context, principal *guard.Principal, input productsvc.CreateInput) (*productsvc.ProductDTO, error) {
	s.created = &input
	return &productsvc.ProductDTO{ID: uuid.New(), Name: input.Name}, nil
}

func (s *stubProductService) Update(ctx context.Context, principal *guard.Principal, productID uuid.UUID, input productsvc.UpdateInput) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductService) Submit(ctx context.Context, principal *guard.Principal, productID uuid.UUID) (*productsvc.ProductDTO, error) {
	s.submitted = append(s.submitted, productID)
	return &productsvc.ProductDTO{ID: productID}, nil
}

func (s *stubProductService) Approve(ctx context.Context, principal *guard.Principal, productID uuid.UUID) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductService) Reject(ctx context.Context, principal *guard.Principal, productID uuid.UUID, reason *string) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductService) Archive(ctx context.Context, principal *guard.Principal, productID uuid.UUID) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductService) Delete(ctx context.Context, principal *guard.Principal, productID uuid.UUID) error {
	panic("unimplemented")
}

func (s *stubProductService) GetByID(ctx context.Context, id uuid.UUID) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductService) GetPublicByHandle(ctx context.Context, handle string) (*productsvc.ProductDTO, error) {
	return &productsvc.ProductDTO{ID: uuid.New(), Handle: handle}, nil
}

func (s *stubProductService) ListMine(ctx context.Context, principal *guard.Principal) ([]productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductService) ListPublic(ctx context.Context, params pagination.Params) ([]productsvc.ProductDTO, error) {
	return []productsvc.ProductDTO{}, nil
}

func vendorContext(t *testing.T) context.Context {
	t.Helper()
	return middleware.WithPrincipal(context.Background(), &guard.Principal{UserID: uuid.New(), Role: enums.UserRoleVendor})
}

func withRouteParam(ctx context.Context, name, value string) context.Context {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(name, value)
	return context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
}

func TestCreateProductDecodesPayload(t *testing.T) {
	logg := testControllerLogger()
	stub := &stubProductService{}

	body := `{"name":"Peony Centerpiece","base_price":"149.99","style_tags":["romantic"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/vendor/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(vendorContext(t))
	rec := httptest.NewRecorder()
	CreateProduct(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.created == nil {
		t.Fatal("expected create to be invoked")
	}
	if stub.created.Name != "Peony Centerpiece" {
		t.Fatalf("unexpected name %q", stub.created.Name)
	}
	if stub.created.BasePrice.String() != "149.99" {
		t.Fatalf("unexpected price %s", stub.created.BasePrice)
	}
}

func TestCreateProductRejectsBadPrice(t *testing.T) {
	logg := testControllerLogger()
	stub := &stubProductService{}

	body := `{"name":"Peony Centerpiece","base_price":"cheap"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/vendor/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(vendorContext(t))
	rec := httptest.NewRecorder()
	CreateProduct(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if stub.created != nil {
		t.Fatal("expected create to be skipped")
	}
}

func TestSubmitProductParsesPathID(t *testing.T) {
	logg := testControllerLogger()
	stub := &stubProductService{}
	productID := uuid.New()

	ctx := withRouteParam(vendorContext(t), "productID", productID.String())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/vendor/products/"+productID.String()+"/submit", nil)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	SubmitProduct(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(stub.submitted) != 1 || stub.submitted[0] != productID {
		t.Fatalf("expected submit for %s, got %v", productID, stub.submitted)
	}
}

func TestSubmitProductRejectsMalformedID(t *testing.T) {
	logg := testControllerLogger()
	stub := &stubProductService{}

	ctx := withRouteParam(vendorContext(t), "productID", "not-a-uuid")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/vendor/products/not-a-uuid/submit", nil)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	SubmitProduct(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if len(stub.submitted) != 0 {
		t.Fatal("expected submit to be skipped")
	}
}
