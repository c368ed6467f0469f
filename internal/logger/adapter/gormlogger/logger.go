// Package gormlogger routes gorm's logger through the global zerolog logger.
package gormlogger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlog "gorm.io/gorm/logger"
)

// DefaultSlowThreshold marks queries logged at warn level.
const DefaultSlowThreshold = 200 * time.Millisecond

// Logger implements gorm's logger.Interface.
type Logger struct {
	Level         gormlog.LogLevel
	SlowThreshold time.Duration
	// SQL logs every statement at debug level.
	SQL bool
}

// New returns a logger reporting warnings and errors, and every statement
// when sql is set.
func New(sql bool) *Logger {
	return &Logger{Level: gormlog.Warn, SlowThreshold: DefaultSlowThreshold, SQL: sql}
}

// LogMode implements logger.Interface.
func (l *Logger) LogMode(level gormlog.LogLevel) gormlog.Interface {
	out := *l
	out.Level = level

	return &out
}

// Info implements logger.Interface.
func (l *Logger) Info(_ context.Context, msg string, args ...any) {
	if l.Level >= gormlog.Info {
		log.Info().Str("component", "gorm").Msg(fmt.Sprintf(msg, args...))
	}
}

// Warn implements logger.Interface.
func (l *Logger) Warn(_ context.Context, msg string, args ...any) {
	if l.Level >= gormlog.Warn {
		log.Warn().Str("component", "gorm").Msg(fmt.Sprintf(msg, args...))
	}
}

// Error implements logger.Interface.
func (l *Logger) Error(_ context.Context, msg string, args ...any) {
	if l.Level >= gormlog.Error {
		log.Error().Str("component", "gorm").Msg(fmt.Sprintf(msg, args...))
	}
}

// Trace implements logger.Interface. Missing records are not errors.
func (l *Logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Level <= gormlog.Silent {
		return
	}

	elapsed := time.Since(begin)

	var event *zerolog.Event

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.Level >= gormlog.Error:
		event = log.Error().Err(err)
	case l.SlowThreshold > 0 && elapsed > l.SlowThreshold && l.Level >= gormlog.Warn:
		event = log.Warn().Dur("threshold", l.SlowThreshold)
	case l.SQL:
		event = log.Debug()
	default:
		return
	}

	sql, rows := fc()
	event.Str("component", "gorm").Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("query")
}
