package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gin-catalog/config"
	"gin-catalog/identity"
	"gin-catalog/infra"
	"gin-catalog/repositories"
	"gin-catalog/services"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	withSeed := flag.Bool("seed", false, "load the demo catalog")
	adminEmail := flag.String("admin-email", "", "create or update a local admin with this email")
	adminPassword := flag.String("admin-password", "", "password for -admin-email")
	adminName := flag.String("admin-name", "", "display name for -admin-email")
	flag.Parse()

	if err := migrate(*configPath, *withSeed, *adminEmail, *adminPassword, *adminName); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrate(configPath string, withSeed bool, adminEmail string, adminPassword string, adminName string) error {
	infra.Initialize()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := infra.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := infra.SetupDB(cfg.Database, logger)
	if err != nil {
		return err
	}
	if err := infra.AutoMigrate(db); err != nil {
		return err
	}
	logger.Info("Migrated database")

	ctx := context.Background()
	if withSeed {
		if err := seed(ctx, db, logger); err != nil {
			return err
		}
	}

	if adminEmail != "" {
		// only provisioning is used; no login runs here
		authService := services.NewAuthService(
			repositories.NewUserRepository(db),
			repositories.NewSessionRepository(db),
			nil,
			identity.NewMemoryStateStore(0),
			services.SessionOptions{Secret: cfg.Session.Secret, Issuer: cfg.Session.Issuer},
			logger,
		)
		admin, err := authService.ProvisionLocalUser(ctx, adminEmail, adminName, adminPassword, true)
		if err != nil {
			return fmt.Errorf("provision admin: %w", err)
		}
		logger.Info("Provisioned local admin", zap.Uint("user_id", admin.ID), zap.String("email", admin.Email))
	}
	return nil
}
