package config

// Supported gorm engines.
const (
	EngineSQLite   = "sqlite"
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
)

// DB holds the database configuration settings.
type DB struct {
	GormEngine string `mapstructure:"gormEngine"` // sqlite, mysql or postgres
	Path       string `mapstructure:"path"`       // sqlite database file
	Extras     string `mapstructure:"extras"`     // appended to the DSN
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name"`
}
