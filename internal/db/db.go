// Package db opens the console database.
package db

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/atlas-ops/atlas/internal/config"
	"github.com/atlas-ops/atlas/internal/db/dsn"
	"github.com/atlas-ops/atlas/internal/db/models"
	"github.com/atlas-ops/atlas/internal/logger/adapter/gormlogger"
)

// ErrUnknownEngine is returned for an engine Open cannot dial.
var ErrUnknownEngine = errors.New("unknown gorm engine")

// Dialector returns the gorm dialector for the configured engine.
func Dialector(cfg config.DB) (gorm.Dialector, error) {
	switch cfg.GormEngine {
	case config.EngineSQLite, "":
		return sqlite.Open(cfg.Path), nil
	case config.EngineMySQL:
		return gormmysql.Open(dsn.MySQL(cfg)), nil
	case config.EnginePostgres:
		return gormpostgres.Open(dsn.Postgres(cfg)), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.GormEngine)
}

// Open connects to the database and migrates the schema.
func Open(cfg config.DB, logSQL bool) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.New(logSQL)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err = db.AutoMigrate(&models.Document{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
