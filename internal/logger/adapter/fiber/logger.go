// Package fiber provides a zerolog access log middleware for fiber.
package fiber

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/logger"
)

// UserLocal is the fiber Locals key read for the authenticated user id.
const UserLocal = "userID"

// Config of the access log middleware.
type Config struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Config of the logger.
	Config logger.Log

	// CacheControlError is set on responses the error handler failed to write.
	CacheControlError string

	// CheckAliveURI is not logged when Config.DisableCheckAlive is set.
	CheckAliveURI string
}

// ConfigDefault is used when New is called without a config.
var ConfigDefault = Config{
	CacheControlError: "max-age=0",
}

func configDefault(config ...Config) Config {
	if len(config) < 1 {
		return ConfigDefault
	}

	cfg := config[0]
	if cfg.CacheControlError == "" {
		cfg.CacheControlError = ConfigDefault.CacheControlError
	}

	return cfg
}

// New returns a middleware writing one JSON line per request.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)
	access := zerolog.New(zerolog.MultiLevelWriter(accessWriters(cfg.Config)...)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)

	return func(ctx *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(ctx) {
			return ctx.Next()
		}

		start := time.Now()

		chainErr := ctx.Next()
		if chainErr != nil {
			if err := ctx.App().ErrorHandler(ctx, chainErr); err != nil {
				_ = ctx.SendStatus(fiber.StatusInternalServerError)
				ctx.Response().Header.Set(fiber.HeaderCacheControl, cfg.CacheControlError)
			}
		}

		if cfg.Config.DisableCheckAlive && ctx.Path() == cfg.CheckAliveURI {
			return nil
		}

		logAccess(access, ctx, start, chainErr)

		return nil
	}
}

func logAccess(access zerolog.Logger, ctx *fiber.Ctx, start time.Time, chainErr error) {
	elapsed := time.Since(start).Seconds()
	ctx.Response().Header.Set("X-Performance", strconv.FormatFloat(elapsed, 'f', 6, 64))

	// fasthttp normalizes the path; the raw request URI keeps duplicate slashes.
	uri := string(ctx.Request().RequestURI())

	event := access.Log().
		Str("IP", ctx.IP()).
		Int("status", ctx.Response().StatusCode()).
		Float64("X-Performance", elapsed).
		Str("URI", uri).
		Str("method", ctx.Method()).
		Bytes("host", ctx.Request().Host()).
		Str(fiber.HeaderXForwardedFor, ctx.Get(fiber.HeaderXForwardedFor)).
		Str(fiber.HeaderUserAgent, ctx.Get(fiber.HeaderUserAgent))

	if user, ok := ctx.Locals(UserLocal).(string); ok && user != "" {
		event.Str("user", user)
	}

	if chainErr != nil {
		event.Err(chainErr)
	}

	event.Send()
}

func accessWriters(cfg logger.Log) []io.Writer {
	var writers []io.Writer

	if cfg.File.Enabled {
		if err := os.MkdirAll(cfg.File.Path, 0o750); err != nil { //nolint:mnd
			log.Error().Err(err).Str("path", cfg.File.Path).Msg("can't create log directory")
		} else {
			writers = append(writers, logger.NewRotation(cfg.File.Path, cfg.File.Access))
		}
	}

	if cfg.Console.Enabled && cfg.EnableAccessLogToConsole {
		if cfg.Console.UseConsoleWriter {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{zerolog.LevelFieldName},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	return writers
}
