// Package daemon wires the database, the workforce service and the web
// server of the console.
package daemon

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/config"
	"github.com/atlas-ops/atlas/internal/db"
	"github.com/atlas-ops/atlas/internal/db/controller/document"
	"github.com/atlas-ops/atlas/internal/db/dsn"
	"github.com/atlas-ops/atlas/internal/notify"
	"github.com/atlas-ops/atlas/internal/seed"
	"github.com/atlas-ops/atlas/internal/university"
	"github.com/atlas-ops/atlas/internal/web"
	"github.com/atlas-ops/atlas/internal/web/session"
	"github.com/atlas-ops/atlas/internal/workforce"
)

const sessionTable = "sessions"

// Backend is the loaded workforce service and the resources behind it.
type Backend struct {
	Service *workforce.Service
	closers []func() error
}

// Close releases the notifier connection.
func (b *Backend) Close() {
	for _, c := range b.closers {
		if err := c(); err != nil {
			log.Error().Err(err).Msg("close failed")
		}
	}
}

// Open connects to the database and the broker and loads the stored state.
// An empty database is seeded from cfg.Seed.File when one is configured.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	gdb, err := db.Open(cfg.DB, cfg.Log.LogSQL)
	if err != nil {
		return nil, err
	}

	repo, err := document.NewRepository(gdb)
	if err != nil {
		return nil, err
	}

	b := &Backend{}

	var notifier notify.Notifier = notify.LogNotifier{}

	if cfg.Notify.AMQPURL != "" {
		amqp, err := notify.DialAMQP(cfg.Notify.AMQPURL, cfg.Notify.Exchange)
		if err != nil {
			return nil, fmt.Errorf("failed to connect broker: %w", err)
		}

		notifier = amqp
		b.closers = append(b.closers, amqp.Close)
	}

	b.Service = workforce.New(workforce.Options{
		Repository:     repo,
		Notifier:       notifier,
		AssigneePolicy: university.PolicyByName(cfg.University.AssigneePolicy),
	})

	if err = b.Service.Load(ctx); err != nil {
		b.Close()
		return nil, err
	}

	if cfg.Seed.File != "" && b.Service.Empty() {
		fixtures, err := seed.Load(cfg.Seed.File)
		if err != nil {
			b.Close()
			return nil, err
		}

		if _, err = seed.Apply(ctx, b.Service, fixtures); err != nil {
			b.Close()
			return nil, err
		}

		log.Info().Str("file", cfg.Seed.File).Msg("empty database seeded")
	}

	return b, nil
}

// SessionStorage returns the session backend of the configured engine. SQLite
// keeps sessions in memory.
func SessionStorage(cfg config.DB) fiber.Storage {
	switch cfg.GormEngine {
	case config.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.MySQL(cfg),
			Table:         sessionTable,
		})
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Postgres(cfg),
			Table:         sessionTable,
		})
	}

	return nil
}

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	backend    *Backend
	webService *web.Service
}

// Start serves HTTP until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	defer d.backend.Close()

	go func() {
		if err := d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port)); err != nil {
			log.Error().Err(err).Msg("web service stopped")
		}
	}()

	log.Info().Int("port", d.cfg.Webserver.Port).Msg("atlas started")

	d.webService.WaitShutdown()

	return nil
}

// New creates a new Daemon instance with the provided configuration.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil, nil
	}

	backend, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	session.Init(SessionStorage(cfg.DB))

	return &Daemon{
		cfg:        cfg,
		backend:    backend,
		webService: web.New(cfg, backend.Service),
	}, nil
}
