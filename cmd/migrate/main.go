package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"os"
	"strings"

	"docbrains-backend/internal/shared/config"
	"docbrains-backend/internal/shared/storage/db"
	"docbrains-backend/internal/shared/telemetry"
)

func main() {
	defer telemetry.Sync()

	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("config.invalid", map[string]any{"error": err})
		os.Exit(1)
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Error("migrate.skipped", map[string]any{"reason": "DATABASE_URL is empty"})
		os.Exit(1)
	}
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err})
		os.Exit(1)
	}
	telemetry.Info("migrate.complete", nil)
}
