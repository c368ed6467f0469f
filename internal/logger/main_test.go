package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-ops/atlas/internal/logger"
)

func TestInit(t *testing.T) {
	testCases := []struct {
		name       string
		cfg        logger.Log
		wantOutput bool
		wantJSON   bool
	}{
		{
			name: "nothing enabled",
			cfg:  logger.Log{ServiceName: "test", AppName: "atlas"},
		},
		{
			name:       "console info",
			cfg:        logger.Log{LogLevel: "info", ServiceName: "test", AppName: "atlas", Console: logger.Console{Enabled: true}},
			wantOutput: true,
			wantJSON:   true,
		},
		{
			name: "console writer trace",
			cfg: logger.Log{
				LogLevel: "trace", ServiceName: "test", AppName: "atlas",
				Console: logger.Console{Enabled: true, UseConsoleWriter: true},
			},
			wantOutput: true,
		},
		{
			name: "json with caller",
			cfg: logger.Log{
				LogLevel: "info", ServiceName: "test", AppName: "atlas", ReportCaller: true,
				Console: logger.Console{Enabled: true},
			},
			wantOutput: true,
			wantJSON:   true,
		},
		{
			name: "json with stack",
			cfg: logger.Log{
				LogLevel: "trace", ServiceName: "test", AppName: "atlas", ReportCaller: true,
				Console: logger.Console{Enabled: true},
			},
			wantOutput: true,
			wantJSON:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := captureOutput(t, tc.cfg)

			if !tc.wantOutput {
				assert.Empty(t, out)
				return
			}

			require.NotEmpty(t, out)

			if !tc.wantJSON {
				return
			}

			for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
				var entry struct {
					Level   string `json:"level"`
					App     string `json:"app"`
					Message string `json:"message"`
				}

				require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
				assert.Equal(t, "atlas", entry.App)
			}
		})
	}
}

func TestInit_InvalidConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     logger.Log
		wantErr error
	}{
		{name: "missing service name", cfg: logger.Log{LogLevel: "info", AppName: "atlas"}, wantErr: logger.ErrServiceNameIsEmpty},
		{name: "missing app name", cfg: logger.Log{LogLevel: "info", ServiceName: "test"}, wantErr: logger.ErrAppNameIsEmpty},
		{
			name:    "datadog without api key",
			cfg:     logger.Log{LogLevel: "info", ServiceName: "test", AppName: "atlas", DataDog: logger.DataDog{Enabled: true}},
			wantErr: logger.ErrDataDogAPIKeyIsEmpty,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, logger.Init(tc.cfg), tc.wantErr)
		})
	}

	require.Error(t, logger.Init(logger.Log{LogLevel: "loud", ServiceName: "test", AppName: "atlas"}))
}

func TestInit_Files(t *testing.T) {
	dir := t.TempDir()

	err := logger.Init(logger.Log{
		LogLevel: "info", ServiceName: "test", AppName: "atlas",
		File: logger.LogFile{
			Enabled: true,
			Path:    dir,
			Info:    logger.Rotation{File: "info.log", MaxSize: 1},
			Error:   logger.Rotation{File: "error.log", MaxSize: 1},
			Trace:   logger.Rotation{File: "trace.log", MaxSize: 1},
			Warn:    logger.Rotation{File: "warn.log", MaxSize: 1},
		},
	})
	require.NoError(t, err)

	log.Info().Msg("project launched")
	log.Error().Err(errors.New("disk full")).Msg("save failed")

	info, err := os.ReadFile(filepath.Join(dir, "info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "project launched")
	assert.NotContains(t, string(info), "save failed")

	errs, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errs), "disk full")
}

func TestLevelWriter(t *testing.T) {
	var info, errs, trace, warn bytes.Buffer

	lw := &logger.LevelWriter{InfoWriter: &info, ErrorWriter: &errs, TraceWriter: &trace, WarnWriter: &warn}

	testCases := []struct {
		level zerolog.Level
		want  *bytes.Buffer
	}{
		{level: zerolog.DebugLevel, want: &info},
		{level: zerolog.InfoLevel, want: &info},
		{level: zerolog.WarnLevel, want: &warn},
		{level: zerolog.ErrorLevel, want: &errs},
		{level: zerolog.FatalLevel, want: &errs},
		{level: zerolog.TraceLevel, want: &trace},
	}

	for _, tc := range testCases {
		t.Run(tc.level.String(), func(t *testing.T) {
			before := tc.want.Len()

			n, err := lw.WriteLevel(tc.level, []byte("x"))
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			assert.Equal(t, before+1, tc.want.Len())
		})
	}

	n, err := lw.WriteLevel(zerolog.Disabled, []byte("x"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

// captureOutput initializes the logger with stdout and stderr redirected to
// a pipe and returns what three log statements produced.
func captureOutput(t *testing.T, cfg logger.Log) string {
	t.Helper()

	stdout, stderr := os.Stdout, os.Stderr

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout, os.Stderr = w, w

	initErr := logger.Init(cfg)

	log.Info().Msg("task toggled")
	log.Error().Err(errors.New("a test error")).Msg("launch failed")
	log.Trace().Msg("resolving due dates")

	outC := make(chan string)

	go func() {
		var buf bytes.Buffer

		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	_ = w.Close()
	os.Stdout, os.Stderr = stdout, stderr

	out := <-outC

	require.NoError(t, initErr)

	return out
}
