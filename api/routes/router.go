package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/feastline/feastline-backend/api/controllers"
	webhookcontrollers "github.com/feastline/feastline-backend/api/controllers/webhooks"
	"github.com/feastline/feastline-backend/api/middleware"
	"github.com/feastline/feastline-backend/internal/cart"
	"github.com/feastline/feastline-backend/internal/catalog"
	checkoutsvc "github.com/feastline/feastline-backend/internal/checkout"
	"github.com/feastline/feastline-backend/internal/coupons"
	"github.com/feastline/feastline-backend/internal/dashboard"
	"github.com/feastline/feastline-backend/internal/notify"
	"github.com/feastline/feastline-backend/internal/orders"
	"github.com/feastline/feastline-backend/internal/payouts"
	cashfreewebhook "github.com/feastline/feastline-backend/internal/webhooks/cashfree"
	"github.com/feastline/feastline-backend/pkg/cashfree"
	"github.com/feastline/feastline-backend/pkg/config"
	"github.com/feastline/feastline-backend/pkg/db"
	"github.com/feastline/feastline-backend/pkg/logger"
	"github.com/feastline/feastline-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. The router only wires,
// it owns nothing.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       db.Pinger
	Redis          *redis.Client
	MetricsHandler http.Handler

	Catalog     catalog.Service
	CatalogRepo catalog.Repository
	Cart        cart.Service
	Checkout    checkoutsvc.Service
	Orders      orders.Service
	Coupons     coupons.Service
	Payouts     payouts.Service
	Dashboard   dashboard.Service
	Notify      notify.Service

	Cashfree        *cashfree.Client
	CashfreeWebhook cashfreewebhook.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.Redis))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/cashfree", webhookcontrollers.CashfreeWebhook(deps.CashfreeWebhook, deps.Cashfree, logg))
	})

	r.Route("/api/v1/outlets/{menuSlug}", func(r chi.Router) {
		r.Get("/", controllers.OutletDetail(deps.Catalog, logg))
		r.Get("/items", controllers.OutletItems(deps.Catalog, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/cart/{menuSlug}", func(r chi.Router) {
			r.Get("/", controllers.CartView(deps.Cart, deps.Catalog, logg))
			r.Post("/", controllers.CartAddItem(deps.Cart, deps.Catalog, logg))
			r.Put("/{itemKey}", controllers.CartUpdateItem(deps.Cart, deps.Catalog, logg))
			r.Delete("/{itemKey}", controllers.CartRemoveItem(deps.Cart, deps.Catalog, logg))
		})

		r.Post("/checkout/{menuSlug}", controllers.Checkout(deps.Checkout, logg))
		r.Get("/offers/{menuSlug}", controllers.Offers(deps.Coupons, deps.Cart, deps.Catalog, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Get("/{orderID}", controllers.OrderDetail(deps.Orders, logg))
			r.Put("/{orderID}", controllers.OrderUpdate(deps.Orders, logg))
			r.Post("/{orderID}/session", controllers.RetryPaymentSession(deps.Checkout, logg))
		})
		r.Get("/payments/{orderID}/status", controllers.PaymentStatus(deps.Orders, deps.Cashfree, logg))

		r.Route("/push", func(r chi.Router) {
			r.Post("/subscribe", controllers.PushSubscribe(deps.Notify, logg))
			r.Post("/test", controllers.PushTest(deps.Notify, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOwner(logg))

			r.Route("/live-orders", func(r chi.Router) {
				r.Get("/", controllers.LiveOrders(deps.Orders, logg))
				r.Put("/{orderID}", controllers.OrderUpdate(deps.Orders, logg))
			})
			r.Route("/coupons", func(r chi.Router) {
				r.Get("/", controllers.CouponList(deps.Coupons, logg))
				r.Post("/", controllers.CouponCreate(deps.Coupons, logg))
			})
			r.Get("/payouts", controllers.Payouts(deps.Payouts, logg))
			r.Get("/dashboard", controllers.Dashboard(deps.Dashboard, logg))
			r.Get("/socket", controllers.SellerSocket(deps.CatalogRepo, deps.Redis, logg))
		})
	})

	return r
}
