package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/config"
	fiberlogger "github.com/atlas-ops/atlas/internal/logger/adapter/fiber"
	"github.com/atlas-ops/atlas/internal/web/handler"
	"github.com/atlas-ops/atlas/internal/web/handler/accesscontrol"
	"github.com/atlas-ops/atlas/internal/web/handler/actioncenter"
	"github.com/atlas-ops/atlas/internal/web/handler/asset"
	"github.com/atlas-ops/atlas/internal/web/handler/login"
	"github.com/atlas-ops/atlas/internal/web/handler/logout"
	"github.com/atlas-ops/atlas/internal/web/handler/me"
	"github.com/atlas-ops/atlas/internal/web/handler/playbook"
	"github.com/atlas-ops/atlas/internal/web/handler/template"
	"github.com/atlas-ops/atlas/internal/web/handler/university"
	"github.com/atlas-ops/atlas/internal/web/handler/user"
	authmiddleware "github.com/atlas-ops/atlas/internal/web/middleware/auth"
	"github.com/atlas-ops/atlas/internal/workforce"
)

const (
	// CheckAlivePath answers 200 while the service accepts traffic.
	CheckAlivePath = "/checkalive"
	// MetricsPath exposes the prometheus registry.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	svc          *workforce.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the server down.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// CheckAlive answers 200 until shutdown starts, 503 afterwards.
func (s *Service) CheckAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, svc *workforce.Service) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if svc == nil {
		panic("workforce service cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "Atlas",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			ErrorHandler:   handler.ErrorHandler,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	service := &Service{
		cfg:          cfg,
		App:          app,
		svc:          svc,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	app.Get(CheckAlivePath, service.CheckAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group(handler.APIPath)

	// public
	login.Handler.Init(api, cfg, svc)
	logout.Handler.Init(api, cfg)

	api.Use(authmiddleware.Middleware(svc, cfg.Webserver.Session.CookieName))

	for _, h := range []handler.Service{
		&me.Handler,
		&accesscontrol.Handler,
		&asset.Handler,
		&user.Handler,
		&template.Handler,
		&actioncenter.Handler,
		&university.Handler,
		&playbook.Handler,
	} {
		h.Init(api, cfg, svc)
	}

	return service
}
