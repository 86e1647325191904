// Package app wires the storefront binaries: the development API server and
// the console storefront.
package app

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/db"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/server"
	"github.com/xenking/storefront/internal/storage/memory"
	"github.com/xenking/storefront/internal/storage/postgres"
	"github.com/xenking/storefront/internal/storage/seed"
	"github.com/xenking/storefront/pkg/health"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

// RunServer creates the stores, serves the storefront API and handles graceful
// shutdown. It is the single wiring point for the API server.
func RunServer(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Server.Addr))

	hs := health.New()
	hs.Register(health.Check{
		Name:    "goroutines",
		Kind:    health.Liveness,
		Timeout: time.Second,
		Func:    health.GoroutineCountCheck(10000),
	})

	var (
		products product.Repository
		orders   order.Repository
	)
	if cfg.Server.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.Server.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		hs.Register(health.Check{Name: "postgres", Kind: health.Readiness, Timeout: 5 * time.Second, Func: pool.Ping})

		products = postgres.NewProductRepository(pool)
		orders = postgres.NewOrderRepository(pool)
		lg.Info("Using PostgreSQL store")
	} else {
		catalog, err := loadCatalog(cfg.Server.SeedFile)
		if err != nil {
			return errors.Wrap(err, "load catalog")
		}
		products = memory.NewProductRepository(catalog)
		orders = memory.NewOrderRepository()
		lg.Info("Using in-memory store", zap.Int("products", len(catalog)))
	}
	hs.Register(health.Check{
		Name:    "catalog",
		Kind:    health.Readiness,
		Timeout: 5 * time.Second,
		Func: health.NonEmpty("products", func(ctx context.Context) (int, error) {
			items, err := products.List(ctx)
			return len(items), err
		}),
	})

	srv := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Server.Addr,
		Handler: newHandler(zctx.From(ctx), cfg.Server, products, orders, hs,
			m.TracerProvider(), m.MeterProvider()),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hs.Run(gctx, 10*time.Second)
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		hs.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	hs.SetReady(true)

	return g.Wait()
}

// newHandler builds the API server handler: health probes plus the traced API
// under cfg.Prefix, wrapped in the middleware chain.
func newHandler(
	lg *zap.Logger,
	cfg ServerConfig,
	products product.Repository,
	orders order.Repository,
	hs *health.Health,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", hs.LiveEndpoint)
	mux.HandleFunc("GET /readyz", hs.ReadyEndpoint)
	server.Mount(mux, server.NewHandler(products, order.NewService(products, orders)), server.Options{
		Prefix:         cfg.Prefix,
		TracerProvider: tp,
		MeterProvider:  mp,
	})

	return httpmiddleware.Wrap(mux,
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.RequestID(),
		httpmiddleware.LogRequests(),
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			Origins: cfg.CORSOrigins,
			Headers: []string{"Content-Type", httpmiddleware.HeaderRequestID},
			MaxAge:  86400,
		}),
	)
}

// loadCatalog reads the seed file, or the built-in catalog when path is empty.
func loadCatalog(path string) ([]product.Product, error) {
	if path == "" {
		return seed.Read(bytes.NewReader(db.Products))
	}
	return seed.ReadFile(path)
}
