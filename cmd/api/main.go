package main

import (
	"context"
	"net/http"
	"os"

	"github.com/andresvelarde/skyfare-backend/api/routes"
	authsvc "github.com/andresvelarde/skyfare-backend/internal/auth"
	cartsvc "github.com/andresvelarde/skyfare-backend/internal/cart"
	checkinsvc "github.com/andresvelarde/skyfare-backend/internal/checkin"
	checkoutsvc "github.com/andresvelarde/skyfare-backend/internal/checkout"
	"github.com/andresvelarde/skyfare-backend/internal/email"
	flightsvc "github.com/andresvelarde/skyfare-backend/internal/flights"
	ordersvc "github.com/andresvelarde/skyfare-backend/internal/orders"
	"github.com/andresvelarde/skyfare-backend/internal/pricing"
	"github.com/andresvelarde/skyfare-backend/internal/seats"
	ticketsvc "github.com/andresvelarde/skyfare-backend/internal/tickets"
	"github.com/andresvelarde/skyfare-backend/internal/users"
	"github.com/andresvelarde/skyfare-backend/pkg/auth/session"
	"github.com/andresvelarde/skyfare-backend/pkg/config"
	"github.com/andresvelarde/skyfare-backend/pkg/db"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
	"github.com/andresvelarde/skyfare-backend/pkg/metrics"
	"github.com/andresvelarde/skyfare-backend/pkg/migrate"
	"github.com/andresvelarde/skyfare-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	flightRepo := flightsvc.NewRepository(conn)
	cartRepo := cartsvc.NewRepository(conn)
	orderRepo := ordersvc.NewRepository(conn)
	ticketRepo := ticketsvc.NewRepository(conn)
	ledger := seats.NewLedger(conn)

	priceResolver, err := pricing.NewResolver(flightRepo)
	requireService(logg, "pricing resolver", err)

	flightService, err := flightsvc.NewService(flightRepo)
	requireService(logg, "flight service", err)

	cartService, err := cartsvc.NewService(dbClient, cartRepo, flightRepo, priceResolver)
	requireService(logg, "cart service", err)

	orderService, err := ordersvc.NewService(dbClient, orderRepo, logg)
	requireService(logg, "order service", err)

	ticketService, err := ticketsvc.NewService(ticketRepo, flightRepo, ledger)
	requireService(logg, "ticket service", err)

	checkinService, err := checkinsvc.NewService(dbClient, ticketRepo, ledger, flightRepo, logg)
	requireService(logg, "check-in service", err)

	mailer, err := email.NewSendgridSender(cfg.Sendgrid, logg)
	requireService(logg, "mail sender", err)

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.Deps{
		Runner:         dbClient,
		Carts:          cartRepo,
		Flights:        flightRepo,
		Orders:         orderRepo,
		Tickets:        ticketRepo,
		Ledger:         ledger,
		Pricing:        priceResolver,
		Users:          userRepo,
		Mailer:         mailer,
		Logger:         logg,
		CurrencySymbol: cfg.Checkout.CurrencySymbol,
	})
	requireService(logg, "checkout service", err)

	authService, err := authsvc.NewService(userRepo, sessionManager, cfg.JWT, cfg.Password, logg)
	requireService(logg, "auth service", err)

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, httpMetrics, routes.Services{
			Auth:     authService,
			Flights:  flightService,
			Cart:     cartService,
			Checkout: checkoutService,
			Checkin:  checkinService,
			Orders:   orderService,
			Tickets:  ticketService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name, err)
	os.Exit(1)
}
