package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/catalog"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/config"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/events"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/handlers"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/intake"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/middleware"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/relay"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
	"github.com/Lixing-Zhang/kart-challenge/storefront/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting storefront server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
		"relay_backend", cfg.Session.RelayBackend,
	)

	ctx := context.Background()

	// Initialize catalog generator
	genOpts := []catalog.Option{catalog.WithSize(cfg.Catalog.Size)}
	if len(cfg.Catalog.WordSources) > 0 {
		log.Info("loading word pool...", "sources", cfg.Catalog.WordSources)
		words, err := catalog.LoadWords(ctx, cfg.Catalog.WordSources)
		if err != nil {
			log.Error("failed to load word pool", "error", err)
			os.Exit(1)
		}
		log.Info("word pool loaded", "words", len(words))
		genOpts = append(genOpts, catalog.WithWords(words))
	}
	generator := catalog.NewGenerator(genOpts...)

	// Initialize relay store
	var store relay.Store
	switch cfg.Session.RelayBackend {
	case "redis":
		redisStore, err := relay.NewRedisStore(ctx, relay.RedisOptions{
			Addrs:    cfg.Redis.Addrs,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Error("failed to connect to redis", "addrs", cfg.Redis.Addrs, "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		store = redisStore
	default:
		store = relay.NewMemoryStore()
	}

	// Initialize order event publisher
	var publisher events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		log.Info("publishing order events to kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		publisher = events.NewLogPublisher(log)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("failed to close event publisher", "error", err)
		}
	}()

	// Initialize repositories
	sessions := repository.NewInMemorySessionRepository(store, repository.SessionOptions{
		TTL:      cfg.Session.TTL,
		Debounce: cfg.Catalog.Debounce,
	})

	// Initialize services
	catalogService := service.NewCatalogService(generator)
	checkoutService := service.NewCheckoutService(intake.New(), publisher, log)
	checkoutService.SetPublishTimeout(cfg.Kafka.PublishTimeout)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	router, err := handlers.NewRouter(handlers.RouterConfig{
		Sessions:       sessions,
		Catalog:        catalogService,
		Checkout:       checkoutService,
		Limiter:        limiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         log,
	})
	if err != nil {
		log.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	// Evict idle sessions and rate limit buckets in the background
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepIdle(sweepCtx, sessions, limiter, cfg.Session.TTL, log)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// sweepIdle drops idle sessions and rate limit buckets every ttl/2 until ctx is done
func sweepIdle(ctx context.Context, repo repository.SessionRepository, limiter *middleware.RateLimiter, ttl time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(max(ttl/2, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := repo.EvictIdle(ctx); n > 0 {
				log.Info("evicted idle sessions", "count", n)
			}
			if n := limiter.EvictIdle(ttl); n > 0 {
				log.Debug("evicted idle rate limit buckets", "count", n)
			}
		}
	}
}
