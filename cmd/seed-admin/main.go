package main

import (
	"context"
	"log"
	"time"

	"github.com/noah-isme/uni-adm-api/internal/migrations"
	"github.com/noah-isme/uni-adm-api/internal/repository"
	"github.com/noah-isme/uni-adm-api/internal/service"
	"github.com/noah-isme/uni-adm-api/pkg/config"
	"github.com/noah-isme/uni-adm-api/pkg/database"
	"github.com/noah-isme/uni-adm-api/pkg/logger"
	"github.com/noah-isme/uni-adm-api/pkg/password"
)

// seed-admin runs the schema migrations and seeds the initial
// administrator account, then exits. Safe to run repeatedly and
// concurrently with other instances.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := migrations.Up(db.DB); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	users := repository.NewUserRepository(db)
	bootstrap := service.NewBootstrapService(users, password.NewBcryptHasher(0), cfg.Bootstrap, logr, service.NewMetricsService())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created, err := bootstrap.EnsureAdminExists(ctx)
	if err != nil {
		logr.Sugar().Fatalw("failed to seed admin account", "error", err)
	}
	if created {
		logr.Sugar().Infow("admin account created", "id", cfg.Bootstrap.AdminID, "email", cfg.Bootstrap.AdminEmail)
	} else {
		logr.Sugar().Infow("admin account already present, nothing to do")
	}
}
