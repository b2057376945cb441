package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/middleware"
)

// Mountable registers its routes on a subrouter
type Mountable interface {
	Routes(r chi.Router)
}

// Reference is an admin reference table mounted under /api/admin/{Path}
type Reference struct {
	Path    string
	Handler Mountable
}

// RouterConfig carries everything the HTTP surface is built from
type RouterConfig struct {
	Logger         *slog.Logger
	Sessions       middleware.SessionManager
	Cookie         middleware.CookieOptions
	AllowedOrigins []string
	RequestTimeout time.Duration

	Health     *HealthHandler
	Menu       *MenuHandler
	Cart       *CartHandler
	Orders     *OrderHandler
	Auth       *AuthHandler
	Reports    *ReportHandler
	References []Reference
	Metrics    http.Handler
}

// NewRouter builds the storefront's HTTP handler
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Tracing)
	r.Use(middleware.Metrics)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id", middleware.SessionHeader},
		ExposedHeaders:   []string{middleware.SessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health/live", cfg.Health.Live)
	r.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/menu", cfg.Menu.ListMenu)
		r.Get("/menu/categories", cfg.Menu.ListCategories)
		r.Get("/menu/{dishId}", cfg.Menu.GetItem)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Sessions(cfg.Sessions, cfg.Cookie))

			r.Get("/cart", cfg.Cart.GetCart)
			r.Post("/cart/items", cfg.Cart.AddItem)
			r.Put("/cart/items/{dishId}", cfg.Cart.UpdateQuantity)
			r.Delete("/cart/items/{dishId}", cfg.Cart.RemoveItem)

			// The checkout flow answers unauthenticated sessions itself with a login redirect.
			r.Post("/checkout", cfg.Orders.Checkout)

			r.Post("/auth/login", cfg.Auth.Login)
			r.Post("/auth/register", cfg.Auth.Register)
			r.Post("/auth/logout", cfg.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/orders", cfg.Orders.ListOrders)
				r.Get("/auth/me", cfg.Auth.Me)
				r.Put("/auth/me", cfg.Auth.UpdateMe)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/reports/revenue", cfg.Reports.Revenue)
				r.Post("/reports/popular-dishes", cfg.Reports.PopularDishes)
				r.Get("/reports/staff-performance", cfg.Reports.StaffPerformance)
				r.Get("/reports/inventory", cfg.Reports.Inventory)

				for _, ref := range cfg.References {
					r.Route("/"+ref.Path, func(r chi.Router) {
						if ref.Path == "prices" {
							r.Put("/bulk", cfg.Reports.UpdatePrices)
						}
						ref.Handler.Routes(r)
					})
				}
			})
		})
	})

	return r
}
