// Package config reads etc/main.toml.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvJSON names the environment variable whose JSON document overrides the file.
const EnvJSON = "ATLAS_CONFIG_JSON"

const (
	defaultShutDownTime      = 5
	defaultWarningWindowDays = 30
	defaultSQLitePath        = "atlas.db"
	defaultExchange          = "atlas.events"
	defaultCookieName        = "atlas_session"
)

// ReadConfig reads main.toml from path, "./etc/" when empty. Single keys can
// be overridden with ATLAS_<SECTION>_<KEY> variables, whole sections with
// the JSON document in ATLAS_CONFIG_JSON.
func ReadConfig(path string) (Config, error) {
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, "main.toml"))
	v.SetEnvPrefix("ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	if env := os.Getenv(EnvJSON); env != "" {
		if err := json.Unmarshal([]byte(env), &c); err != nil {
			return Config{}, errors.Wrap(err, "failed to decode "+EnvJSON)
		}
	}

	return c, validate(&c)
}

// DumpConfig config as TOML String.
func DumpConfig(c Config) (string, error) {
	var buffer bytes.Buffer

	if err := toml.NewEncoder(&buffer).Encode(c); err != nil {
		return "", err //nolint:wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c Config) (string, error) {
	var buffer bytes.Buffer

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint:wrapcheck
	}

	return buffer.String(), nil
}

// validate checks the settings the daemon cannot run without and fills
// defaults for the rest.
func validate(c *Config) error {
	invalid := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalid)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalid)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.Session.CookieName == "" {
		c.Webserver.Session.CookieName = defaultCookieName
	}

	switch c.DB.GormEngine {
	case "":
		c.DB.GormEngine = EngineSQLite
	case EngineSQLite, EngineMySQL, EnginePostgres:
	default:
		return errors.Wrap(ErrUnknownGormEngine, invalid)
	}

	if c.DB.GormEngine == EngineSQLite && c.DB.Path == "" {
		c.DB.Path = defaultSQLitePath
	}

	switch {
	case c.University.WarningWindowDays < 0:
		return errors.Wrap(ErrNegativeWarningWindow, invalid)
	case c.University.WarningWindowDays == 0:
		c.University.WarningWindowDays = defaultWarningWindowDays
	}

	if c.Notify.Exchange == "" {
		c.Notify.Exchange = defaultExchange
	}

	return nil
}
