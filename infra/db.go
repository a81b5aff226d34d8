package infra

import (
	"fmt"
	"time"

	"gin-catalog/config"
	"gin-catalog/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupDB opens the catalog database. Postgres is used when the driver is
// "postgres", otherwise a SQLite file at cfg.Path.
func SetupDB(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gormLogger := logger.Default
	if !cfg.LogMode {
		gormLogger = gormLogger.LogMode(logger.Silent)
	}
	gormConfig := &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	}

	if cfg.Driver == "postgres" {
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s connect_timeout=10",
			cfg.Host,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.Port,
			cfg.SSLMode,
		)
		db, err := gorm.Open(postgres.Open(dsn), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		log.Info("Setup postgres database",
			zap.String("host", cfg.Host),
			zap.String("dbname", cfg.Name),
			zap.String("port", cfg.Port),
		)
		return db, tunePool(db, 20, 10)
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	log.Info("Setup sqlite database", zap.String("path", cfg.Path))
	return db, tunePool(db, 10, 5)
}

// SetupMemoryDB opens a migrated in-memory SQLite database. The pool is
// pinned to one connection because every new connection would get its own
// empty database.
func SetupMemoryDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := tunePool(db, 1, 1); err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func tunePool(db *gorm.DB, maxOpen, maxIdle int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	if maxOpen > 1 {
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return nil
}

// AutoMigrate creates or updates the catalog schema.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Item{},
		&models.Session{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
