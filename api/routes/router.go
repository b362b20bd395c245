package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ovenlight/bakeshop-backend/api/controllers"
	"github.com/ovenlight/bakeshop-backend/api/middleware"
	cartsvc "github.com/ovenlight/bakeshop-backend/internal/cart"
	checkoutsvc "github.com/ovenlight/bakeshop-backend/internal/checkout"
	"github.com/ovenlight/bakeshop-backend/internal/notifications"
	"github.com/ovenlight/bakeshop-backend/internal/orders"
	"github.com/ovenlight/bakeshop-backend/internal/payments"
	"github.com/ovenlight/bakeshop-backend/pkg/config"
	"github.com/ovenlight/bakeshop-backend/pkg/enums"
	"github.com/ovenlight/bakeshop-backend/pkg/logger"
	"github.com/ovenlight/bakeshop-backend/pkg/metrics"
)

// Deps carries everything the router mounts.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DBPinger        controllers.Pinger
	RedisPinger     controllers.Pinger
	HTTPMetrics     *metrics.HTTPMetrics
	MetricsHandler  http.Handler
	Checkout        checkoutsvc.Service
	Cart            cartsvc.Service
	Orders          orders.Service
	Notifications   notifications.Service
	PaymentRegistry *payments.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DBPinger, deps.RedisPinger, logg))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/payments/methods", controllers.ListPaymentMethods(deps.PaymentRegistry, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))
			r.Post("/checkout/cart", controllers.CheckoutFromCart(deps.Checkout, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListOrders(deps.Orders, logg))
				r.Get("/{id}", controllers.GetOrder(deps.Orders, logg))
				r.Get("/number/{orderNumber}", controllers.GetOrderByNumber(deps.Orders, logg))
				r.Post("/{id}/cancel", controllers.CancelOrder(deps.Orders, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))
					r.Get("/status/{status}", controllers.ListOrdersByStatus(deps.Orders, logg))
					r.Put("/{id}/status", controllers.UpdateOrderStatus(deps.Orders, logg))
					r.Delete("/{id}", controllers.DeleteOrder(deps.Orders, logg))
				})
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(deps.Cart, logg))
				r.Post("/items", controllers.AddCartItem(deps.Cart, logg))
				r.Put("/items/{itemID}", controllers.UpdateCartItem(deps.Cart, logg))
				r.Delete("/items/{itemID}", controllers.RemoveCartItem(deps.Cart, logg))
				r.Delete("/", controllers.ClearCart(deps.Cart, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
				r.Get("/unread-count", controllers.UnreadNotificationCount(deps.Notifications, logg))
				r.Post("/{id}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
				r.Delete("/{id}", controllers.DeleteNotification(deps.Notifications, logg))
			})
		})
	})

	return r
}
