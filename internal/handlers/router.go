package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/middleware"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig wires the services into the HTTP surface
type RouterConfig struct {
	Sessions       repository.SessionRepository
	Catalog        *service.CatalogService
	Checkout       *service.CheckoutService
	Limiter        *middleware.RateLimiter
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter builds the chi router for pages, API and health
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	log := cfg.Logger

	pages, err := NewPageHandler(cfg.Catalog, cfg.Checkout, log)
	if err != nil {
		return nil, err
	}
	healthHandler := NewHealthHandler(log)
	catalogHandler := NewCatalogHandler(cfg.Catalog, log)
	checkoutHandler := NewCheckoutHandler(cfg.Checkout, log)

	limit := func(next http.Handler) http.Handler { return next }
	if cfg.Limiter != nil {
		limit = cfg.Limiter.Handler
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", healthHandler.ServeHTTP)

	// Screens
	r.Group(func(r chi.Router) {
		r.Use(middleware.Sessions(cfg.Sessions, log))

		r.Get("/", pages.Catalog)
		r.Post("/buy/{itemId}", pages.Buy)
		r.Get("/checkout", pages.Checkout)
		r.With(limit).Post("/checkout", pages.SubmitCheckout)
		r.Get("/confirmation", pages.Confirmation)
	})

	// API routes; session cookies are only shared with listed origins
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			AllowCredentials: !slices.Contains(cfg.AllowedOrigins, "*"),
			MaxAge:           300,
		}))
		r.Use(middleware.Sessions(cfg.Sessions, log))

		// Catalog endpoints
		r.Get("/catalog", catalogHandler.GetCatalog)
		r.Post("/catalog/regenerate", catalogHandler.Regenerate)
		r.Put("/catalog/filter", catalogHandler.TypeFilter)
		r.Put("/catalog/sort", catalogHandler.SetSort)
		r.Post("/catalog/select/{itemId}", catalogHandler.SelectItem)

		// Checkout endpoints
		r.Get("/checkout", checkoutHandler.GetCheckout)
		r.With(limit).Post("/checkout", checkoutHandler.Submit)
		r.Get("/confirmation", checkoutHandler.GetConfirmation)
	})

	return r, nil
}
