package gormlogger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlog "gorm.io/gorm/logger"
)

func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer

	previous, level := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(level)
	})

	return &buf
}

func TestTrace(t *testing.T) {
	query := func() (string, int64) { return "SELECT * FROM documents", 3 }

	testCases := []struct {
		name    string
		logger  *Logger
		begin   time.Time
		err     error
		want    string
		wantLog bool
	}{
		{name: "quiet success", logger: New(false), begin: time.Now()},
		{name: "sql enabled", logger: New(true), begin: time.Now(), want: `"level":"debug"`, wantLog: true},
		{name: "error", logger: New(false), begin: time.Now(), err: errors.New("locked"), want: `"error":"locked"`, wantLog: true},
		{name: "record not found ignored", logger: New(false), begin: time.Now(), err: gorm.ErrRecordNotFound},
		{name: "slow query", logger: New(false), begin: time.Now().Add(-time.Second), want: `"level":"warn"`, wantLog: true},
		{name: "silent", logger: New(true).LogMode(gormlog.Silent).(*Logger), begin: time.Now(), err: errors.New("locked")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := captureGlobal(t)

			tc.logger.Trace(context.Background(), tc.begin, query, tc.err)

			if !tc.wantLog {
				assert.Empty(t, buf.String())
				return
			}

			assert.Contains(t, buf.String(), tc.want)
			assert.Contains(t, buf.String(), "SELECT * FROM documents")
		})
	}
}

func TestLevels(t *testing.T) {
	buf := captureGlobal(t)
	l := New(false)

	l.Info(context.Background(), "migrated %d tables", 1)
	assert.Empty(t, buf.String(), "info is below the default level")

	l.Warn(context.Background(), "slow %s", "start")
	assert.Contains(t, buf.String(), "slow start")

	l.LogMode(gormlog.Info).Info(context.Background(), "migrated %d tables", 1)
	assert.Contains(t, buf.String(), "migrated 1 tables")
}
