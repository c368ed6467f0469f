// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strings"

	"github.com/atlas-ops/atlas/internal/config"
)

// MySQL builds a go-sql-driver DSN from the configuration.
func MySQL(cfg config.DB) string {
	out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)

	if cfg.Extras != "" {
		out += "?" + cfg.Extras
	}

	return out
}

// Postgres builds a pgx keyword/value DSN from the configuration. Extras
// are appended as given, e.g. "sslmode=disable TimeZone=UTC".
func Postgres(cfg config.DB) string {
	parts := []string{
		"host=" + cfg.Host,
		fmt.Sprintf("port=%d", cfg.Port),
		"user=" + cfg.User,
		"password=" + cfg.Password,
		"dbname=" + cfg.Name,
	}

	if cfg.Extras != "" {
		parts = append(parts, cfg.Extras)
	}

	return strings.Join(parts, " ")
}
