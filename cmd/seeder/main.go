// cmd/seeder/main.go
//
// Seeds the database with a starter catalog of motorcycle parts and a few
// regular customers so a fresh install has something to sell.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bengkelpos/pos-be/internal/adapters/db"
	"github.com/bengkelpos/pos-be/internal/core/domain"
	"github.com/bengkelpos/pos-be/internal/core/ports"
)

func main() {
	var (
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun   = flag.Bool("dry-run", false, "Preview changes without modifying database")
		migrate  = flag.Bool("migrate", true, "Run migrations before seeding")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)

	ctx := context.Background()

	dbConfig := &db.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "bengkel"),
		Password: getEnv("DB_PASSWORD", "bengkel_dev_2026"),
		Database: getEnv("DB_NAME", "bengkel_pos"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	if *migrate && !*dryRun {
		dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Database, dbConfig.SSLMode)

		migrationConfig := &db.MigrationConfig{
			DatabaseURL: dbURL,
			SourcePath:  getEnv("DB_MIGRATION_PATH", "migrations"),
			TableName:   "schema_migrations",
			SchemaName:  "public",
		}
		if err := db.RunMigrationsWithRetry(ctx, migrationConfig, logger, 3); err != nil {
			logger.Error("failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	parts := sampleParts()
	customers := sampleCustomers()

	if *dryRun {
		for _, p := range parts {
			fmt.Printf("would create part: %-30s Rp %d x%d\n", p.Name, p.Price, p.Stock)
		}
		for _, c := range customers {
			fmt.Printf("would create customer: %-20s %s\n", c.Name, c.Phone)
		}
		fmt.Println("\n[DRY RUN] No changes were made to the database")
		return
	}

	database, err := db.NewDatabase(ctx, dbConfig, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	store := db.NewRecordStore(database, logger)

	items := ports.NewCollection[domain.InventoryItem](store, ports.CollectionInventory)
	var createdParts int
	for _, p := range parts {
		if _, err := items.Create(ctx, &p); err != nil {
			logger.Error("failed to create part",
				slog.String("name", p.Name),
				slog.String("error", err.Error()))
			continue
		}
		createdParts++
	}

	directory := ports.NewCollection[domain.Customer](store, ports.CollectionCustomers)
	var createdCustomers int
	for _, c := range customers {
		if _, err := directory.Create(ctx, &c); err != nil {
			logger.Error("failed to create customer",
				slog.String("name", c.Name),
				slog.String("error", err.Error()))
			continue
		}
		createdCustomers++
	}

	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Seeded %d parts and %d customers\n", createdParts, createdCustomers)
	fmt.Println(strings.Repeat("=", 50))

	logger.Info("seed operation completed",
		slog.Int("parts_created", createdParts),
		slog.Int("customers_created", createdCustomers))
}

// sampleParts is the stock a small Honda/Yamaha workshop usually carries.
// Prices are in whole rupiah.
func sampleParts() []domain.InventoryItem {
	return []domain.InventoryItem{
		{Name: "Busi NGK CPR9EA-9", Price: 25000, Stock: 40},
		{Name: "Oli Mesin Yamalube 10W-40 800ml", Price: 55000, Stock: 24},
		{Name: "Oli Mesin AHM MPX-1 10W-30 800ml", Price: 52000, Stock: 30},
		{Name: "Kampas Rem Depan Vario 125", Price: 45000, Stock: 12},
		{Name: "Kampas Rem Belakang Beat", Price: 35000, Stock: 15},
		{Name: "Filter Udara Mio M3", Price: 40000, Stock: 10},
		{Name: "Rantai Keteng Supra X 125", Price: 125000, Stock: 6},
		{Name: "V-Belt Vario 150", Price: 165000, Stock: 8},
		{Name: "Aki GS Astra GTZ5S", Price: 235000, Stock: 5},
		{Name: "Ban Luar IRC 80/90-14", Price: 185000, Stock: 9},
		{Name: "Ban Dalam Swallow 80/90-14", Price: 32000, Stock: 20},
		{Name: "Kabel Gas Beat FI", Price: 28000, Stock: 14},
		{Name: "Lampu Depan LED Vario", Price: 95000, Stock: 7},
		{Name: "Roller CVT Beat 13gr", Price: 60000, Stock: 11},
		{Name: "Seal Shock Depan Satria FU", Price: 38000, Stock: 8},
	}
}

func sampleCustomers() []domain.Customer {
	return []domain.Customer{
		{Name: "Pak Budi", Phone: "0812-3456-7890"},
		{Name: "Bu Sari", Phone: "0813-9876-5432"},
		{Name: "Mas Agus", Phone: "0821-1122-3344"},
		{Name: "Ojek Online Wahyu", Phone: "0857-5566-7788"},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
