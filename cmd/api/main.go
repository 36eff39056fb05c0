// cmd/api/main.go
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

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/bengkelpos/pos-be/internal/adapters/db"
	redis_a "github.com/bengkelpos/pos-be/internal/adapters/redis_adapter"
	"github.com/bengkelpos/pos-be/internal/core/services"
	"github.com/bengkelpos/pos-be/internal/handlers"
	"github.com/bengkelpos/pos-be/internal/handlers/middleware"
	"github.com/bengkelpos/pos-be/internal/pkg/config"
	"github.com/bengkelpos/pos-be/internal/pkg/logger"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting bengkel point of sale system",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
	)

	cfg, err := config.Load(slogger.Logger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	deps, err := initializeDependencies(ctx, cfg, slogger.Logger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	// Run database migrations outside production
	if !cfg.IsProduction() {
		if err := runMigrations(ctx, cfg, slogger.Logger); err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			// Don't exit in development, just warn
		}
	}

	server := setupHTTPServer(cfg, deps, slogger.Logger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()))

		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector

	inventoryHandler *handlers.InventoryHandler
	customerHandler  *handlers.CustomerHandler
	salesHandler     *handlers.SalesHandler
	reportHandler    *handlers.ReportHandler
	exportHandler    *handlers.ExportHandler
	importHandler    *handlers.ImportHandler
	healthHandler    *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.database != nil {
		d.database.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	slogger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, slogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	slogger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:            cfg.GetRedisAddress(),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient

	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)

	slogger.Info("initializing Asynq client")

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	// Storage and services
	store := db.NewRecordStore(database, slogger)

	inventoryService := services.NewInventoryService(store, cache, cfg.Inventory.SnapshotTTL, slogger)
	customerService := services.NewCustomerService(store, slogger)
	cartService := services.NewCartService(store, cache, inventoryService, slogger)
	salesService := services.NewSalesService(store, cache, slogger)
	reportService := services.NewReportService(store, cache, cfg.Inventory.ReportTTL, cfg.Inventory.BestSellingLimit, slogger)

	// Handlers
	deps.inventoryHandler = handlers.NewInventoryHandler(inventoryService, cfg.Inventory.LowStockThreshold, slogger)
	deps.customerHandler = handlers.NewCustomerHandler(customerService, slogger)
	deps.salesHandler = handlers.NewSalesHandler(cartService, salesService, slogger)
	deps.reportHandler = handlers.NewReportHandler(reportService, slogger)
	deps.exportHandler = handlers.NewExportHandler(inventoryService, salesService, slogger)

	maxFileSize := int64(cfg.FileProcessing.ExcelMaxSizeMB) * 1024 * 1024
	deps.importHandler = handlers.NewImportHandler(deps.asynqClient, cache, slogger, maxFileSize, cfg.FileProcessing.TempDir)

	deps.healthHandler = handlers.NewHealthHandler(database, redisClient, deps.asynqInspector, cfg, slogger)

	slogger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, slogger *slog.Logger) *http.Server {
	mux := http.NewServeMux()

	registerRoutes(mux, deps, cfg)

	// Apply middleware in reverse order (innermost first)
	var handler http.Handler = mux

	handler = middleware.RequestID(handler)
	handler = middleware.Logger(logger.GetDefault())(handler)
	handler = middleware.Recovery(slogger)(handler)

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slogger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies, cfg *config.Config) {
	apiV1 := "/api/v1"

	if cfg.Server.EnableHealthCheck {
		mux.HandleFunc("GET /health", deps.healthHandler.Health)
		mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
		mux.HandleFunc("GET "+apiV1+"/health", deps.healthHandler.Health)
	}

	// Inventory endpoints
	mux.HandleFunc("GET "+apiV1+"/inventory", deps.inventoryHandler.ListInventory)
	mux.HandleFunc("GET "+apiV1+"/inventory/low-stock", deps.inventoryHandler.LowStock)
	mux.HandleFunc("GET "+apiV1+"/inventory/lookup", deps.inventoryHandler.LookupInventory)
	mux.HandleFunc("GET "+apiV1+"/inventory/{id}", deps.inventoryHandler.GetInventory)
	mux.HandleFunc("POST "+apiV1+"/inventory", deps.inventoryHandler.SaveInventory)
	mux.HandleFunc("PUT "+apiV1+"/inventory/{id}", deps.inventoryHandler.UpdateInventory)
	mux.HandleFunc("DELETE "+apiV1+"/inventory/{id}", deps.inventoryHandler.DeleteInventory)

	// Customer endpoints
	mux.HandleFunc("GET "+apiV1+"/customers", deps.customerHandler.ListCustomers)
	mux.HandleFunc("POST "+apiV1+"/customers", deps.customerHandler.SaveCustomer)
	mux.HandleFunc("PUT "+apiV1+"/customers/{id}", deps.customerHandler.UpdateCustomer)
	mux.HandleFunc("DELETE "+apiV1+"/customers/{id}", deps.customerHandler.DeleteCustomer)

	// Cart and checkout endpoints
	mux.HandleFunc("GET "+apiV1+"/cart", deps.salesHandler.GetCart)
	mux.HandleFunc("POST "+apiV1+"/cart/lines", deps.salesHandler.AddCartLine)
	mux.HandleFunc("DELETE "+apiV1+"/cart/lines/{index}", deps.salesHandler.RemoveCartLine)
	mux.HandleFunc("DELETE "+apiV1+"/cart", deps.salesHandler.ClearCart)
	mux.HandleFunc("POST "+apiV1+"/cart/checkout", deps.salesHandler.Checkout)

	// Sales history endpoints
	mux.HandleFunc("GET "+apiV1+"/sales", deps.salesHandler.ListSales)
	mux.HandleFunc("DELETE "+apiV1+"/sales/{id}", deps.salesHandler.DeleteSale)

	// Report endpoints
	mux.HandleFunc("GET "+apiV1+"/reports/summary", deps.reportHandler.GetSummary)

	// Export endpoints
	mux.HandleFunc("GET "+apiV1+"/export/inventory.csv", deps.exportHandler.ExportInventoryCSV)
	mux.HandleFunc("GET "+apiV1+"/export/sales.csv", deps.exportHandler.ExportSalesCSV)
	mux.HandleFunc("GET "+apiV1+"/export/inventory.xlsx", deps.exportHandler.ExportInventoryExcel)

	// Import endpoints
	mux.HandleFunc("POST "+apiV1+"/import/excel", deps.importHandler.ImportExcel)
	mux.HandleFunc("GET "+apiV1+"/import/status/{jobId}", deps.importHandler.ImportStatus)
}

func runMigrations(ctx context.Context, cfg *config.Config, slogger *slog.Logger) error {
	slogger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, slogger, 3)
}
