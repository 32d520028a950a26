// migrate applies the embedded schema migrations under a PostgreSQL advisory lock.
//
// Usage: go run ./cmd/migrate
package main

import (
	"context"
	"log"
	"time"

	"inventory-service/internal/config"
	"inventory-service/internal/db"
	"inventory-service/internal/logging"
	"inventory-service/migrations"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadTools()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, migrations.FS, logger.Named("migrate")); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	logger.Info("all migrations processed")
}
