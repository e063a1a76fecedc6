// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/joho/godotenv/autoload"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	HTTP  HTTPConfig
	DB    DBConfig
	Log   LogConfig
	Cache CacheConfig
}

type HTTPConfig struct {
	Port           int           `env:"PORT" env-default:"8080"`
	RequestTimeout time.Duration `env:"TICK_REQUEST_TIMEOUT" env-default:"10s"`
	ReadTimeout    time.Duration `env:"TICK_HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout   time.Duration `env:"TICK_HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout    time.Duration `env:"TICK_HTTP_IDLE_TIMEOUT" env-default:"1m"`
	CORSOrigins    []string      `env:"TICK_CORS_ORIGINS" env-default:"https://*,http://*" env-separator:","`
}

type DBConfig struct {
	Driver string `env:"TICK_DB_DRIVER" env-default:"sqlite"`

	// sqlite
	Path string `env:"TICK_DB_PATH" env-default:"todos.db"`

	// postgres; URL takes precedence over the individual fields
	URL      string `env:"TICK_DB_URL"`
	Host     string `env:"TICK_DB_HOST" env-default:"localhost"`
	Port     string `env:"TICK_DB_PORT" env-default:"5432"`
	Username string `env:"TICK_DB_USERNAME" env-default:"postgres"`
	Password string `env:"TICK_DB_PASSWORD"`
	Database string `env:"TICK_DB_DATABASE" env-default:"tick"`
	SSLMode  string `env:"TICK_DB_SSLMODE" env-default:"disable"`

	MaxOpenConns    int           `env:"TICK_DB_MAX_OPEN" env-default:"100"`
	MaxIdleConns    int           `env:"TICK_DB_MAX_IDLE" env-default:"10"`
	ConnMaxLifetime time.Duration `env:"TICK_DB_CONN_LIFETIME" env-default:"1h"`

	// SeedExample inserts a sample todo when the table is empty.
	SeedExample bool `env:"TICK_SEED_EXAMPLE" env-default:"false"`
}

// DSN returns the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.Username, c.Password, c.Database, c.Port, c.SSLMode)
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"console"`
	// SQL turns on per-statement logging from gorm.
	SQL bool `env:"LOG_SQL" env-default:"false"`
}

type CacheConfig struct {
	// RedisURL enables the read-through cache when set, e.g. redis://localhost:6379/0.
	RedisURL string        `env:"REDIS_URL"`
	TTL      time.Duration `env:"TICK_CACHE_TTL" env-default:"30s"`
}

// Load reads the configuration from the environment (and .env, if present).
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	switch cfg.DB.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return Config{}, fmt.Errorf("TICK_DB_DRIVER: unsupported driver %q", cfg.DB.Driver)
	}
	if cfg.HTTP.Port < 1 || cfg.HTTP.Port > 65535 {
		return Config{}, fmt.Errorf("PORT: %d is not a valid TCP port", cfg.HTTP.Port)
	}
	return cfg, nil
}
