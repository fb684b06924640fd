package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tuanphm/teehouse-backend/api/controllers"
	"github.com/tuanphm/teehouse-backend/api/middleware"
	internalorders "github.com/tuanphm/teehouse-backend/internal/orders"
	"github.com/tuanphm/teehouse-backend/internal/payments"
	"github.com/tuanphm/teehouse-backend/internal/reconcile"
	"github.com/tuanphm/teehouse-backend/pkg/config"
	"github.com/tuanphm/teehouse-backend/pkg/logger"
	pkgredis "github.com/tuanphm/teehouse-backend/pkg/redis"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config         *config.Config
	Logger         *logger.Logger
	Redis          *pkgredis.Client
	Orders         internalorders.Service
	Payments       payments.Service
	Reconcile      *reconcile.Service
	DesignUploader *controllers.DesignUploader
	Readiness      map[string]controllers.Pinger
}

// NewRouter assembles the HTTP surface.
func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})

	// Gateway returns carry their own verification and never a bearer token.
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Get("/domestic/return", controllers.DomesticGatewayReturn(deps.Reconcile, logg))
		r.Post("/card/verify-session", controllers.VerifyCardSession(deps.Reconcile, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Post("/", controllers.CreateOrder(deps.Orders, deps.Payments, logg))
		r.Get("/", controllers.ListOrders(deps.Orders, logg))
		r.Get("/number/{orderNumber}", controllers.GetOrder(deps.Orders, logg))
		r.Post("/{orderId}/cancel", controllers.CancelOrder(deps.Orders, logg))
		r.Post("/{orderId}/retry-payment", controllers.RetryPayment(deps.Payments, logg))
		r.Put("/{orderId}/design", controllers.ReplaceDesign(deps.Orders, deps.DesignUploader, logg))
	})

	r.Route("/api/admin/v1/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Post("/{orderId}/advance", controllers.AdminAdvanceFulfillment(deps.Orders, logg))
	})

	return r
}
