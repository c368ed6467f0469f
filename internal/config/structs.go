package config

import (
	"time"

	"github.com/atlas-ops/atlas/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration `mapstructure:"expiryTime"`
	CookieName string        `mapstructure:"cookieName"`
}

// Config overall data structure.
type Config struct {
	Title      string     `mapstructure:"title"`
	DevMode    bool       `mapstructure:"devMode"` // enable dev mode for development
	DB         DB         `mapstructure:"db"`
	Log        logger.Log `mapstructure:"log"`
	Webserver  Webserver  `mapstructure:"webserver"`
	University University `mapstructure:"university"`
	Notify     Notify     `mapstructure:"notify"`
	Seed       Seed       `mapstructure:"seed"`
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool    `mapstructure:"disableRecover"` // disable recover middleware
	Port           int     `mapstructure:"port"`           // listening port for the webserver
	ShutDownTime   int     `mapstructure:"shutDownTime"`   // seconds to wait for open requests on shutdown
	URL            string  `mapstructure:"url"`            // base url for the webserver
	CookieSecure   bool    `mapstructure:"cookieSecure"`
	Session        Session `mapstructure:"session"`
}

// University settings of the certification sweep and course propagation.
type University struct {
	// WarningWindowDays is how far ahead expiring certifications are reported.
	WarningWindowDays int `mapstructure:"warningWindowDays"`
	// AssigneePolicy is "position" or "asset_scoped".
	AssigneePolicy string `mapstructure:"assigneePolicy"`
}

// WarningWindow returns WarningWindowDays as a duration.
func (u University) WarningWindow() time.Duration {
	return time.Duration(u.WarningWindowDays) * 24 * time.Hour //nolint:mnd
}

// Notify configures user notifications. An empty AMQPURL logs them instead.
type Notify struct {
	AMQPURL  string `mapstructure:"amqpURL"`
	Exchange string `mapstructure:"exchange"`
}

// Seed names the fixture file loaded into an empty database.
type Seed struct {
	File string `mapstructure:"file"`
}
