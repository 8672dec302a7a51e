package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"fuelmeter/internal/app"
	"fuelmeter/internal/config"
	"fuelmeter/internal/domain"
	"fuelmeter/internal/handler"
	"fuelmeter/internal/pricesource"
	internalRedis "fuelmeter/internal/redis"
	"fuelmeter/internal/repository"
	"fuelmeter/internal/repository/postgres"
	"fuelmeter/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// The refresh archive degrades gracefully: prices must stay available
	// even when the database is down.
	var db *sql.DB
	db, err = app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Printf("refresh archive disabled, database unavailable: %v", err)
		db = nil
	} else {
		defer db.Close()
		log.Println("Connected to PostgreSQL")
	}

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, priceService, catalog, ledger := wireServer(db, redisClient, nrApp, cfg)

	// Recover any persisted purchase history.
	if err := ledger.Load(ctx); err != nil {
		log.Printf("continuing with empty purchase history: %v", err)
	}

	// Optional background price polling.
	if cfg.Prices.PollEnabled {
		poller := service.NewPoller(priceService, cfg.Prices.PollInterval)
		poller.Start(func(snapshot domain.PriceSnapshot) {
			catalog.ApplySnapshot(snapshot)
		})
		defer poller.Stop()
		log.Printf("Price polling every %s", cfg.Prices.PollInterval)
	}

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus the
// services main keeps a handle on.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.PriceService, *service.CatalogService, *service.LedgerService) {
	// Stores.
	purchaseStore := internalRedis.NewPurchaseStore(redisClient)
	var archive repository.RefreshArchive
	if db != nil {
		archive = postgres.NewRefreshArchive(db)
	}

	// Price source and fallback synthesis.
	source := pricesource.NewClient(cfg.Prices.SourceURL, cfg.Prices.FetchTimeout, nil)
	fallback := pricesource.NewFallbackGenerator(nil)

	// Services.
	catalog := service.NewCatalogService()
	costService := service.NewCostService()
	priceService := service.NewPriceService(source, fallback, archive, cfg.Prices.CacheTTL, nil)
	verifyService := service.NewVerifyService(catalog, nil)
	ledgerService := service.NewLedgerService(purchaseStore, nil)

	// Handlers.
	supplierHandler := handler.NewSupplierHandler(catalog)
	priceHandler := handler.NewPriceHandler(priceService, catalog, archive)
	calculatorHandler := handler.NewCalculatorHandler(costService, catalog)
	purchaseHandler := handler.NewPurchaseHandler(verifyService, ledgerService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		SupplierHandler:   supplierHandler,
		PriceHandler:      priceHandler,
		CalculatorHandler: calculatorHandler,
		PurchaseHandler:   purchaseHandler,
		RedisClient:       redisClient,
		NewRelicApp:       nrApp,
	})

	// Create HTTP server.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, priceService, catalog, ledgerService
}
