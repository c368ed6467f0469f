package logger

// Console configures logging to stdout and stderr.
type Console struct {
	Enabled bool `mapstructure:"enabled"`
	// UseConsoleWriter prints human readable lines instead of JSON.
	UseConsoleWriter bool `mapstructure:"useConsoleWriter"`
}

// Rotation configures one lumberjack file.
type Rotation struct {
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"maxSize"` // megabytes
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAge     int    `mapstructure:"maxAge"` // days
}

// LogFile configures rolling log files, one per level group.
type LogFile struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`

	Access Rotation `mapstructure:"access"`
	Error  Rotation `mapstructure:"error"`
	Info   Rotation `mapstructure:"info"`
	Trace  Rotation `mapstructure:"trace"`
	Warn   Rotation `mapstructure:"warn"`
}

// Log is the logger configuration.
type Log struct {
	LogLevel string `mapstructure:"logLevel"` // trace, debug, info, warn, error
	LogEnv   string `mapstructure:"logEnv"`

	// EnableAccessLogToConsole prints the HTTP access log when Console is enabled.
	EnableAccessLogToConsole bool `mapstructure:"enableAccessLogToConsole"`
	ReportCaller             bool `mapstructure:"reportCaller"`
	DisableCheckAlive        bool `mapstructure:"disableCheckAlive"` // do not log /checkalive calls
	// LogSQL logs every gorm statement at debug level.
	LogSQL bool `mapstructure:"logSQL"`

	AppName     string `mapstructure:"appName"`
	ServiceName string `mapstructure:"serviceName"`

	Console Console `mapstructure:"console"`
	File    LogFile `mapstructure:"file"`
	DataDog DataDog `mapstructure:"datadog"`
}
