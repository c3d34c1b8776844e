package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MUOBSocial/MUOB-creators/internal/model"
	"github.com/MUOBSocial/MUOB-creators/pkg/config"
)

// Open connects to the configured database backing. The sqlite and postgres
// backings carry equivalent schemas and are interchangeable.
func Open(cfg *config.DBConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(cfg.LogLevel),
		TranslateError: true,
	}

	var db *gorm.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.Path), gormConfig)
	case "postgres":
		pgConfig := postgres.Config{
			DSN:                  cfg.GetDSN(),
			PreferSimpleProtocol: true, // Disables implicit prepared statement usage
		}
		db, err = gorm.Open(postgres.New(pgConfig), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return db, nil
}

// Migrate creates or updates the table structure for all entities
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Admin{}, &model.Brief{}, &model.Application{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close releases the pooled database connections
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
