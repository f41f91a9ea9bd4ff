package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maxmagma/wedstay-backend/api/controllers"
	"github.com/maxmagma/wedstay-backend/api/middleware"
	"github.com/maxmagma/wedstay-backend/internal/aggregator"
	inquirysvc "github.com/maxmagma/wedstay-backend/internal/inquiries"
	ordersvc "github.com/maxmagma/wedstay-backend/internal/orders"
	productsvc "github.com/maxmagma/wedstay-backend/internal/products"
	profilesvc "github.com/maxmagma/wedstay-backend/internal/profiles"
	reviewsvc "github.com/maxmagma/wedstay-backend/internal/reviews"
	vendorsvc "github.com/maxmagma/wedstay-backend/internal/vendors"
	"github.com/maxmagma/wedstay-backend/pkg/config"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Products   productsvc.Service
	Vendors    vendorsvc.Service
	Inquiries  inquirysvc.Service
	Orders     ordersvc.Service
	Reviews    reviewsvc.Service
	Profiles   profilesvc.Service
	Aggregator aggregator.Service
}

// Tracking endpoints are open to the internet, so they carry a per-client
// fixed-window cap on top of event id dedupe.
const (
	trackRateLimit  = 120
	trackRateWindow = time.Minute
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisPinger controllers.Pinger,
	limiter middleware.RateLimiter,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbPinger,
			"redis":    redisPinger,
		}))
	})

	// Public catalog and tracking. Inquiry submission and checkout accept
	// guests, so they run behind OptionalAuth instead of Auth.
	r.Route("/api/public", func(r chi.Router) {
		r.Get("/products", controllers.ListPublicProducts(svcs.Products, logg))
		r.Get("/products/{handle}", controllers.GetPublicProduct(svcs.Products, logg))
		r.Get("/reviews/product/{productID}", controllers.ListProductReviews(svcs.Reviews, logg))
		r.Get("/reviews/vendor/{vendorID}", controllers.ListVendorReviews(svcs.Reviews, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(limiter, "track", trackRateLimit, trackRateWindow, logg))
			r.Post("/track/views", controllers.TrackProductView(svcs.Aggregator, logg))
			r.Post("/track/cart-adds", controllers.TrackCartAdd(svcs.Aggregator, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))
			r.Post("/inquiries", controllers.SubmitInquiry(svcs.Inquiries, logg))
			r.Post("/checkout", controllers.Checkout(svcs.Orders, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/me", func(r chi.Router) {
			r.Post("/profile", controllers.BootstrapProfile(svcs.Profiles, logg))
			r.Get("/profile", controllers.GetMyProfile(svcs.Profiles, logg))
			r.Get("/inquiries", controllers.ListMyInquiries(svcs.Inquiries, logg))
			r.Get("/orders", controllers.ListMyOrders(svcs.Orders, logg))
		})

		r.Route("/inquiries", func(r chi.Router) {
			r.Get("/{inquiryID}", controllers.GetInquiry(svcs.Inquiries, logg))
			r.Post("/{inquiryID}/book", controllers.BookInquiry(svcs.Inquiries, logg))
			r.Post("/{inquiryID}/cancel", controllers.CancelInquiry(svcs.Inquiries, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderID}", controllers.GetOrder(svcs.Orders, logg))
			r.Post("/{orderID}/cancel", controllers.CancelOrder(svcs.Orders, logg))
		})

		r.Post("/reviews", controllers.CreateReview(svcs.Reviews, logg))

		r.Route("/vendor", func(r chi.Router) {
			r.Post("/onboard", controllers.OnboardVendor(svcs.Vendors, logg))
			r.Get("/me", controllers.GetMyVendor(svcs.Vendors, logg))
			r.Put("/me", controllers.UpdateVendorSettings(svcs.Vendors, logg))
			r.Post("/me/reapply", controllers.ReapplyVendor(svcs.Vendors, logg))

			r.Get("/products", controllers.ListMyProducts(svcs.Products, logg))
			r.Post("/products", controllers.CreateProduct(svcs.Products, logg))
			r.Patch("/products/{productID}", controllers.UpdateProduct(svcs.Products, logg))
			r.Post("/products/{productID}/submit", controllers.SubmitProduct(svcs.Products, logg))
			r.Post("/products/{productID}/archive", controllers.ArchiveProduct(svcs.Products, logg))
			r.Delete("/products/{productID}", controllers.DeleteProduct(svcs.Products, logg))

			r.Get("/inquiries", controllers.ListVendorInquiries(svcs.Inquiries, logg))
			r.Post("/inquiries/{inquiryID}/respond", controllers.RespondToInquiry(svcs.Inquiries, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))

			r.Post("/vendors/{vendorID}/approve", controllers.ApproveVendor(svcs.Vendors, logg))
			r.Post("/vendors/{vendorID}/reject", controllers.RejectVendor(svcs.Vendors, logg))
			r.Post("/vendors/{vendorID}/suspend", controllers.SuspendVendor(svcs.Vendors, logg))

			r.Post("/products/{productID}/approve", controllers.ApproveProduct(svcs.Products, logg))
			r.Post("/products/{productID}/reject", controllers.RejectProduct(svcs.Products, logg))

			r.Post("/inquiries/{inquiryID}/complete", controllers.CompleteInquiry(svcs.Inquiries, logg))

			r.Post("/orders/{orderID}/advance", controllers.AdvanceOrder(svcs.Orders, logg))
			r.Post("/orders/{orderID}/refund", controllers.RefundOrder(svcs.Orders, logg))

			r.Post("/reviews/{reviewID}/flag", controllers.FlagReview(svcs.Reviews, logg))
			r.Post("/reviews/{reviewID}/unflag", controllers.UnflagReview(svcs.Reviews, logg))

			r.Put("/profiles/{profileID}/role", controllers.SetProfileRole(svcs.Profiles, logg))
			r.Post("/reconcile", controllers.TriggerReconcile(svcs.Aggregator, logg))
		})
	})

	return r
}
