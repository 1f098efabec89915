package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/infaq/internal/database"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Infaq"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Driver   string        `envconfig:"DB_DRIVER" default:"postgres"`
		Host     string        `envconfig:"DB_HOST" default:"localhost"`
		Port     int           `envconfig:"DB_PORT" default:"5432"`
		User     string        `envconfig:"DB_USER" default:"postgres"`
		Password string        `envconfig:"DB_PASSWORD" default:""`
		Name     string        `envconfig:"DB_NAME" default:"infaq"`
		Path     string        `envconfig:"DB_PATH" default:"data/infaq.db"`
		Timeout  time.Duration `envconfig:"DB_TIMEOUT" default:"5s"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWTSecret        string `envconfig:"AUTH_JWT_SECRET"`
		DefaultActorID   string `envconfig:"AUTH_DEFAULT_ACTOR_ID" default:"system"`
		DefaultActorName string `envconfig:"AUTH_DEFAULT_ACTOR_NAME" default:"System"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Ledger struct {
		RecentDefault int `envconfig:"LEDGER_RECENT_DEFAULT" default:"10"`
		RecentMax     int `envconfig:"LEDGER_RECENT_MAX" default:"100"`
	}
}

func (c *Config) Driver() database.Driver {
	return database.Driver(c.DB.Driver)
}

// ConnectionString returns the DSN for the configured driver.
func (c *Config) ConnectionString() string {
	if c.Driver() == database.DriverSQLite {
		return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", c.DB.Path)
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(c.DB.User), url.QueryEscape(c.DB.Password), c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.Driver() {
	case database.DriverPostgres, database.DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", cfg.DB.Driver)
	}

	if cfg.Ledger.RecentMax <= 0 {
		return nil, fmt.Errorf("LEDGER_RECENT_MAX must be positive, got %d", cfg.Ledger.RecentMax)
	}

	return &cfg, nil
}
