// Package app wires configuration, storage backends, domain services,
// and the HTTP server into a running storefront.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/glowshelf/storefront/db"
	"github.com/glowshelf/storefront/internal/domain/admin"
	"github.com/glowshelf/storefront/internal/domain/cart"
	"github.com/glowshelf/storefront/internal/domain/catalog"
	"github.com/glowshelf/storefront/internal/domain/checkout"
	"github.com/glowshelf/storefront/internal/handler"
	"github.com/glowshelf/storefront/internal/session"
	"github.com/glowshelf/storefront/internal/storage/memory"
	"github.com/glowshelf/storefront/internal/storage/postgres"
	"github.com/glowshelf/storefront/pkg/health"
	"github.com/glowshelf/storefront/pkg/httpmiddleware"
)

// confirmationTTL bounds how long a staged order confirmation waits for
// its single read before expiring.
const confirmationTTL = 15 * time.Minute

// Run creates all dependencies, starts the HTTP server, and handles
// graceful shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("catalog_backend", cfg.CatalogBackend),
	)

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Catalog backend.
	var (
		products catalog.Repository
		writer   catalog.Writer
	)
	switch cfg.CatalogBackend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}

		repo := postgres.NewProductRepository(pool)
		if err := seedIfEmpty(ctx, lg, repo); err != nil {
			return errors.Wrap(err, "seed catalog")
		}
		products, writer = repo, repo

		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
	default:
		demo, err := db.DemoCatalog()
		if err != nil {
			return errors.Wrap(err, "load demo catalog")
		}
		cat := memory.NewCatalog(demo...)
		products, writer = cat, cat
	}

	// Session backend.
	var sessions session.Store
	if cfg.RedisURL != "" {
		redisStore, err := session.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return errors.Wrap(err, "connect session store")
		}
		defer func() { _ = redisStore.Close() }()

		healthSvc.AddReadinessCheck("redis", 5*time.Second, redisStore.Ping)
		sessions = redisStore
	} else {
		memStore := session.NewMemoryStore()
		memStore.StartJanitor(ctx, time.Minute)
		sessions = memStore
	}

	// Domain services.
	cartSvc := cart.NewService(products, sessions, cfg.SessionTTL)
	checkoutSvc := checkout.NewService(cartSvc, sessions, confirmationTTL)
	adminSvc := admin.NewService(cfg.Admin.Username, cfg.Admin.Password, sessions, cfg.SessionTTL)

	h := handler.New(
		handler.Config{
			ImageBaseURL:  cfg.ImageBaseURL,
			SecureCookies: cfg.SecureCookies,
		},
		products, writer, cartSvc, checkoutSvc, adminSvc,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", http.StripPrefix("/api", h.Routes()))

	healthSvc.SetReady(true)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			otelhttp.NewHandler(mux, "storefront",
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// seedIfEmpty loads the embedded demo catalog into an empty products
// table so a fresh database serves the storefront immediately. A table
// with any rows is left alone.
func seedIfEmpty(ctx context.Context, lg *zap.Logger, repo *postgres.ProductRepository) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return errors.Wrap(err, "count products")
	}
	if n > 0 {
		return nil
	}

	demo, err := db.DemoCatalog()
	if err != nil {
		return errors.Wrap(err, "load demo catalog")
	}
	for _, p := range demo {
		if err := repo.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
	}

	lg.Info("Seeded demo catalog", zap.Int("products", len(demo)))
	return nil
}
