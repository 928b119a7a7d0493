package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andresvelarde/skyfare-backend/api/controllers"
	"github.com/andresvelarde/skyfare-backend/api/middleware"
	authsvc "github.com/andresvelarde/skyfare-backend/internal/auth"
	cartsvc "github.com/andresvelarde/skyfare-backend/internal/cart"
	checkinsvc "github.com/andresvelarde/skyfare-backend/internal/checkin"
	checkoutsvc "github.com/andresvelarde/skyfare-backend/internal/checkout"
	flightsvc "github.com/andresvelarde/skyfare-backend/internal/flights"
	ordersvc "github.com/andresvelarde/skyfare-backend/internal/orders"
	ticketsvc "github.com/andresvelarde/skyfare-backend/internal/tickets"
	"github.com/andresvelarde/skyfare-backend/pkg/auth/session"
	"github.com/andresvelarde/skyfare-backend/pkg/config"
	"github.com/andresvelarde/skyfare-backend/pkg/db"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
	"github.com/andresvelarde/skyfare-backend/pkg/metrics"
	"github.com/andresvelarde/skyfare-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth     authsvc.Service
	Flights  flightsvc.Service
	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Checkin  checkinsvc.Service
	Orders   ordersvc.Service
	Tickets  ticketsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1/flights", func(r chi.Router) {
		r.Get("/", controllers.FlightSearch(svcs.Flights, logg))
		r.Get("/{flightID}", controllers.FlightGet(svcs.Flights, logg))
		r.Get("/{flightID}/seats", controllers.FlightSeatMap(svcs.Tickets, logg))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Post("/payment", controllers.PaymentWebhook(svcs.Orders, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(svcs.Cart, logg))
			r.Delete("/", controllers.CartClear(svcs.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
			r.Post("/items/{flightID}/decrease", controllers.CartDecreaseItem(svcs.Cart, logg))
			r.Delete("/items/{flightID}", controllers.CartRemoveItem(svcs.Cart, logg))
		})

		r.Post("/checkout", controllers.Checkout(svcs.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(svcs.Orders, logg))
			r.Get("/{orderID}", controllers.OrderGet(svcs.Orders, logg))
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", controllers.TicketList(svcs.Tickets, logg))
			r.Get("/{ticketID}", controllers.TicketGet(svcs.Tickets, logg))
			r.Post("/{ticketID}/check-in", controllers.TicketCheckIn(svcs.Checkin, logg))
		})
	})

	return r
}
