package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lucaramirezo/products-ga/api/routes"
	"github.com/lucaramirezo/products-ga/internal/audit"
	"github.com/lucaramirezo/products-ga/internal/categoryrules"
	"github.com/lucaramirezo/products-ga/internal/importer"
	"github.com/lucaramirezo/products-ga/internal/params"
	"github.com/lucaramirezo/products-ga/internal/pricebook"
	"github.com/lucaramirezo/products-ga/internal/products"
	"github.com/lucaramirezo/products-ga/internal/purchases"
	"github.com/lucaramirezo/products-ga/internal/quotes"
	"github.com/lucaramirezo/products-ga/internal/suppliers"
	"github.com/lucaramirezo/products-ga/internal/tiers"
	"github.com/lucaramirezo/products-ga/pkg/config"
	"github.com/lucaramirezo/products-ga/pkg/db"
	"github.com/lucaramirezo/products-ga/pkg/logger"
	"github.com/lucaramirezo/products-ga/pkg/metrics"
	"github.com/lucaramirezo/products-ga/pkg/migrate"
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svcs, err := buildServices(cfg, logg, dbClient, registry)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, registry, svcs),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, registry *prometheus.Registry) (routes.Services, error) {
	gormDB := dbClient.DB()

	auditSvc, err := audit.NewService(audit.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}
	tierSvc, err := tiers.NewService(tiers.NewRepository(gormDB), auditSvc, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	ruleSvc, err := categoryrules.NewService(categoryrules.NewRepository(gormDB), auditSvc, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	paramSvc, err := params.NewService(params.NewRepository(gormDB), auditSvc, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	supplierSvc, err := suppliers.NewService(suppliers.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}
	productSvc, err := products.NewService(products.NewRepository(gormDB), auditSvc, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	bookSvc, err := pricebook.NewService(pricebook.NewRepository(gormDB), dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	purchaseSvc, err := purchases.NewService(purchases.NewRepository(gormDB), pricebook.NewRepository(gormDB), dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	quoteSvc, err := quotes.NewService(quotes.NewRepository(gormDB), bookSvc, logg, cfg.Pricing.CacheTTL)
	if err != nil {
		return routes.Services{}, err
	}
	importSvc, err := importer.NewService(supplierSvc, purchaseSvc, metrics.NewJobMetrics(registry))
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Tiers:         tierSvc,
		CategoryRules: ruleSvc,
		Params:        paramSvc,
		Suppliers:     supplierSvc,
		Products:      productSvc,
		PriceBook:     bookSvc,
		Purchases:     purchaseSvc,
		Quotes:        quoteSvc,
		Importer:      importSvc,
		Audit:         auditSvc,
	}, nil
}
