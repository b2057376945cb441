package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/backend"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/checkout"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/config"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/event"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/handlers"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/httpclient"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/middleware"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/repository"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/service"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/session"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/tracing"
	"github.com/Lixing-Zhang/restaurant-storefront/pkg/logger"
)

var version = "dev"

func main() {
	// Load configuration from defaults, the optional file and the environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)
	handlers.Version = version

	log.Info("starting storefront",
		"addr", cfg.Server.Addr(),
		"backend", cfg.Backend.BaseURL,
		"session_store", cfg.Session.Store,
		"log_level", cfg.LogLevel,
	)

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped gracefully")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    logger.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Tracing.Endpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("tracing shutdown", "error", err)
		}
	}()

	// Restaurant backend
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.Backend.Timeout
	httpCfg.MaxRetries = cfg.Backend.MaxRetries
	breakerCfg := httpclient.DefaultBreakerConfig("restaurant-backend")
	breakerCfg.Timeout = cfg.Backend.BreakerTimeout
	doer := httpclient.NewBreakerClient(httpclient.New(httpCfg), breakerCfg, log)
	client := backend.New(cfg.Backend.BaseURL, doer, log)

	checks := map[string]handlers.Checker{
		"backend": client.Ping,
	}

	// Events
	var publisher checkout.Publisher = event.Nop{}
	if cfg.Kafka.Enabled {
		producer := event.NewProducer(event.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
		}, log)
		defer func() {
			if err := producer.Close(); err != nil {
				log.Warn("close kafka producer", "error", err)
			}
		}()
		publisher = producer
		checks["kafka"] = producer.Ping
	}

	// Sessions
	var store session.Store
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		store = session.NewRedisStore(rdb, cfg.Session.TTL)
		checks["redis"] = store.Ping
	default:
		store = session.NewMemoryStore(cfg.Session.TTL)
	}

	checkoutOpts := checkout.DefaultOptions()
	checkoutOpts.TableID = cfg.Checkout.TableID
	checkoutOpts.StaffID = cfg.Checkout.StaffID
	checkoutOpts.RedirectDelay = cfg.Checkout.RedirectDelay
	manager := session.NewManager(store, client, publisher, checkoutOpts, log)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go manager.RunSweeper(sweepCtx, cfg.Session.SweepInterval, cfg.Session.CartIdle)

	// Services
	menuRepo := repository.NewCachedMenuRepository(client, cfg.Menu.CacheTTL, log)
	menuService := service.NewMenuService(menuRepo)
	orderService := service.NewOrderService(client)
	authService := service.NewAuthService(client, manager, backend.IsUnauthorized, log)
	adminService := service.NewAdminService(client, menuRepo.Invalidate)

	refs := backend.NewReferences(client)
	cookie := middleware.CookieOptions{Secure: cfg.Session.CookieSecure, MaxAge: cfg.Session.TTL}

	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:         log,
		Sessions:       manager,
		Cookie:         cookie,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: 60 * time.Second,

		Health:  handlers.NewHealthHandler(checks, log),
		Menu:    handlers.NewMenuHandler(menuService, log),
		Cart:    handlers.NewCartHandler(manager, menuService, log),
		Orders:  handlers.NewOrderHandler(manager, orderService, log),
		Auth:    handlers.NewAuthHandler(authService, manager, cookie, log),
		Reports: handlers.NewReportHandler(adminService, log),
		References: []handlers.Reference{
			{Path: "dishes", Handler: handlers.NewReferenceHandler(service.NewReferenceService[models.Dish](refs.Dishes, menuRepo.Invalidate), log)},
			{Path: "prices", Handler: handlers.NewReferenceHandler(service.NewReferenceService[models.Price](refs.Prices, menuRepo.Invalidate), log)},
			{Path: "staff", Handler: handlers.NewReferenceHandler(service.NewReferenceService[models.Staff](refs.Staff, nil), log)},
			{Path: "suppliers", Handler: handlers.NewReferenceHandler(service.NewReferenceService[models.Supplier](refs.Suppliers, nil), log)},
			{Path: "tables", Handler: handlers.NewReferenceHandler(service.NewReferenceService[models.Table](refs.Tables, nil), log)},
			{Path: "products", Handler: handlers.NewReferenceHandler(service.NewReferenceService[models.Product](refs.Products, nil), log)},
			{Path: "drinks", Handler: handlers.NewReferenceHandler(service.NewReferenceService[models.Drink](refs.Drinks, nil), log)},
		},
		Metrics: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
