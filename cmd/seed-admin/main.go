// seed-admin creates the first administrator account on a fresh database.
//
// Usage: go run ./cmd/seed-admin -username admin -email admin@example.com
//
// The password is read from SEED_ADMIN_PASSWORD.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"inventory-service/internal/config"
	"inventory-service/internal/core"
	"inventory-service/internal/db"
	"inventory-service/internal/logging"

	"go.uber.org/zap"
)

func main() {
	username := flag.String("username", "admin", "admin username")
	email := flag.String("email", "", "admin email address")
	fullName := flag.String("name", "Administrator", "admin full name")
	flag.Parse()

	cfg, err := config.LoadTools()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		logger.Fatal("SEED_ADMIN_PASSWORD is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect", zap.Error(err))
	}
	defer pool.Close()

	users := core.NewUserService(pool)
	user, err := users.CreateUser(ctx, core.SystemActor, core.UserInput{
		Username: *username,
		Email:    *email,
		Password: password,
		FullName: *fullName,
		Role:     core.RoleAdmin,
	})
	var dup *core.DuplicateError
	switch {
	case errors.As(err, &dup):
		logger.Info("admin already exists", zap.String("field", dup.Field), zap.String("value", dup.Value))
		return
	case err != nil:
		logger.Fatal("create admin", zap.Error(err))
	}
	logger.Info("admin created", zap.Int("user_id", user.ID), zap.String("username", user.Username))
}
