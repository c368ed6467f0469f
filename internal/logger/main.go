// Package logger configures the global zerolog logger of the console.
package logger

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelWriter splits log output by level.
// Trace and warn lines get their own writers, error and above go to
// ErrorWriter, debug and info to InfoWriter.
type LevelWriter struct {
	io.Writer
	ErrorWriter io.Writer
	InfoWriter  io.Writer
	TraceWriter io.Writer
	WarnWriter  io.Writer
}

// WriteLevel implements zerolog.LevelWriter.
func (lw *LevelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	var w io.Writer

	switch {
	case l == zerolog.Disabled:
		return 0, nil
	case l == zerolog.TraceLevel:
		w = lw.TraceWriter
	case l == zerolog.WarnLevel:
		w = lw.WarnWriter
	case l > zerolog.WarnLevel:
		w = lw.ErrorWriter
	default:
		w = lw.InfoWriter
	}

	if w == nil {
		return len(p), nil
	}

	return w.Write(p) //nolint:wrapcheck
}

// Init replaces the global logger according to cfg.
// With neither console nor file enabled nothing is written.
func Init(cfg Log) error {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("loglevel %s is not supported", cfg.LogLevel))
	}

	if cfg.ServiceName == "" {
		return ErrServiceNameIsEmpty
	}

	if cfg.AppName == "" {
		return ErrAppNameIsEmpty
	}

	zerolog.SetGlobalLevel(level)
	zerolog.ErrorHandler = ErrorHandler

	var writers []io.Writer

	if cfg.Console.Enabled {
		writers = append(writers, NewConsoleWriter(cfg))
	}

	if cfg.File.Enabled {
		if w := newRollingFiles(cfg.File); w != nil {
			writers = append(writers, w)
		}
	}

	if cfg.DataDog.Enabled {
		if cfg.DataDog.APIKey == "" {
			return ErrDataDogAPIKeyIsEmpty
		}

		writers = append(writers, NewDataDogWriter(cfg.DataDog, cfg.ServiceName))
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Hook(NewPrometheusHook(cfg.ServiceName)).
		With().
		Timestamp().
		Str("app", cfg.AppName)

	switch {
	case cfg.ReportCaller && level == zerolog.TraceLevel:
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign
		ctx = ctx.Stack()
	case cfg.ReportCaller:
		ctx = ctx.Caller()
	}

	log.Logger = ctx.Logger()

	return nil
}

// NewRotation returns a lumberjack file below dir.
func NewRotation(dir string, r Rotation) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path.Join(dir, r.File),
		MaxSize:    r.MaxSize,
		MaxAge:     r.MaxAge,
		MaxBackups: r.MaxBackups,
	}
}

func newRollingFiles(cfg LogFile) io.Writer {
	if err := os.MkdirAll(cfg.Path, 0o750); err != nil { //nolint:mnd
		log.Error().Err(err).Str("path", cfg.Path).Msg("can't create log directory")

		return nil
	}

	return &LevelWriter{
		ErrorWriter: NewRotation(cfg.Path, cfg.Error),
		InfoWriter:  NewRotation(cfg.Path, cfg.Info),
		TraceWriter: NewRotation(cfg.Path, cfg.Trace),
		WarnWriter:  NewRotation(cfg.Path, cfg.Warn),
	}
}

// NewConsoleWriter writes info and debug to stdout and the rest to stderr.
func NewConsoleWriter(cfg Log) io.Writer {
	stdout, stderr := io.Writer(os.Stdout), io.Writer(os.Stderr)

	if cfg.Console.UseConsoleWriter {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: zerolog.TimeFieldFormat}
		stderr = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: zerolog.TimeFieldFormat}
	}

	return &LevelWriter{
		ErrorWriter: stderr,
		InfoWriter:  stdout,
		TraceWriter: stderr,
		WarnWriter:  stderr,
	}
}
