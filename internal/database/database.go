// Package database opens the gorm connection and brings the schema up to date.
package database

import (
	"embed"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"projecthub/internal/config"
	"projecthub/internal/model"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Open connects to the database selected by cfg.DBDriver.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(LogLevel(cfg.DBLogLevel))}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.PostgresDSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Printf("✅ Connected to %s database", cfg.DBDriver)
	return db, nil
}

// Migrate applies pending schema changes. Postgres runs the versioned SQL
// migrations; the sqlite development database is auto-migrated from the models.
func Migrate(cfg *config.Config, db *gorm.DB) error {
	if cfg.DBDriver == config.DriverSQLite {
		err := db.AutoMigrate(
			&model.User{},
			&model.Project{},
			&model.ProjectTask{},
			&model.IndependentTask{},
			&model.Issue{},
		)
		if err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		log.Println("✅ SQLite schema is up to date")
		return nil
	}

	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.PostgresURL())
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	log.Printf("✅ Database schema at version %d (dirty=%t)", version, dirty)
	return nil
}

// LogLevel maps DB_LOG_LEVEL onto the gorm logger. Unknown values mean warn.
func LogLevel(name string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
