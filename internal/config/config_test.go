package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func etcPath(t *testing.T) string {
	t.Helper()

	root, err := filepath.Abs("../../")
	require.NoError(t, err)

	return filepath.Join(root, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(etcPath(t))
	require.NoError(t, err)

	assert.Equal(t, "Atlas", cfg.Title)
	assert.Equal(t, 8080, cfg.Webserver.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Webserver.URL)
	assert.Equal(t, 12*time.Hour, cfg.Webserver.Session.ExpiryTime)
	assert.Equal(t, EngineSQLite, cfg.DB.GormEngine)
	assert.Equal(t, "atlas.db", cfg.DB.Path)
	assert.Equal(t, "info", cfg.Log.LogLevel)
	assert.True(t, cfg.Log.Console.Enabled)
	assert.Equal(t, "access.log", cfg.Log.File.Access.File)
	assert.Equal(t, 30, cfg.University.WarningWindowDays)
	assert.Equal(t, 30*24*time.Hour, cfg.University.WarningWindow())
	assert.Equal(t, "atlas.events", cfg.Notify.Exchange)
	assert.Equal(t, "etc/seed.yaml", cfg.Seed.File)
}

func TestReadConfig_Overrides(t *testing.T) {
	t.Setenv(EnvJSON, `{"Title":"Atlas Staging","Webserver":{"Port":9090,"URL":"https://staging.atlas.test"}}`)
	t.Setenv("ATLAS_UNIVERSITY_ASSIGNEEPOLICY", "asset_scoped")

	cfg, err := ReadConfig(etcPath(t))
	require.NoError(t, err)

	assert.Equal(t, "Atlas Staging", cfg.Title)
	assert.Equal(t, 9090, cfg.Webserver.Port)
	assert.Equal(t, "https://staging.atlas.test", cfg.Webserver.URL)
	assert.Equal(t, "asset_scoped", cfg.University.AssigneePolicy)
	assert.Equal(t, 12*time.Hour, cfg.Webserver.Session.ExpiryTime, "untouched keys survive the JSON override")
}

func TestReadConfig_Errors(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	require.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.toml"), []byte("[webserver]\nport = 8080\n"), 0o600))

	_, err = ReadConfig(dir)
	require.ErrorIs(t, err, ErrEmptyURL)

	t.Setenv(EnvJSON, `{"Title":`)

	_, err = ReadConfig(etcPath(t))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"}}
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "valid"},
		{name: "missing port", mutate: func(c *Config) { c.Webserver.Port = 0 }, wantErr: ErrWebServerPortCanNotBeZero},
		{name: "missing url", mutate: func(c *Config) { c.Webserver.URL = "" }, wantErr: ErrEmptyURL},
		{name: "unknown engine", mutate: func(c *Config) { c.DB.GormEngine = "oracle" }, wantErr: ErrUnknownGormEngine},
		{name: "negative window", mutate: func(c *Config) { c.University.WarningWindowDays = -1 }, wantErr: ErrNegativeWarningWindow},
		{name: "postgres needs no path", mutate: func(c *Config) { c.DB.GormEngine = EnginePostgres }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			if tc.mutate != nil {
				tc.mutate(&c)
			}

			err := validate(&c)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, defaultShutDownTime, c.Webserver.ShutDownTime)
			assert.Equal(t, defaultWarningWindowDays, c.University.WarningWindowDays)
			assert.Equal(t, defaultExchange, c.Notify.Exchange)
			assert.Equal(t, defaultCookieName, c.Webserver.Session.CookieName)

			if c.DB.GormEngine == EngineSQLite {
				assert.Equal(t, defaultSQLitePath, c.DB.Path)
			} else {
				assert.Empty(t, c.DB.Path)
			}
		})
	}
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{Title: "Atlas", DevMode: true, Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"}}

	out, err := DumpConfig(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Atlas")
	assert.Contains(t, out, "Port = 8080")

	js, err := DumpConfigJSON(cfg)
	require.NoError(t, err)
	assert.Contains(t, js, `"Title": "Atlas"`)
}
