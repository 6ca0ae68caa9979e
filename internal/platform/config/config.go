package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is centralized process configuration.
// Values start from defaults, are overlaid by the YAML file named in
// CONFIG_FILE and then by environment variables.
type Config struct {
	ServiceName       string        `yaml:"service_name" validate:"required"`
	HTTPPort          string        `yaml:"http_port" validate:"required"`
	PostgresDSN       string        `yaml:"postgres_dsn"`
	AutoMigrate       bool          `yaml:"auto_migrate"`
	DBMaxOpenConns    int           `yaml:"db_max_open_conns" validate:"gte=0"`
	DBMaxIdleConns    int           `yaml:"db_max_idle_conns" validate:"gte=0"`
	DBConnMaxLifetime time.Duration `yaml:"db_conn_max_lifetime" validate:"gte=0"`
	DBLogQueries      bool          `yaml:"db_log_queries"`
	SiteURL           string        `yaml:"site_url" validate:"required,url"`
	IDDomain          string        `yaml:"id_domain" validate:"required"`
	IdentityHeader    string        `yaml:"identity_header" validate:"required"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" validate:"gte=0"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout" validate:"gt=0"`
	FetchAttempts     int           `yaml:"fetch_attempts" validate:"gte=1,lte=10"`
	HarvestToken      string        `yaml:"harvest_token"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

func Defaults() Config {
	return Config{
		ServiceName:       "opendata",
		HTTPPort:          "8080",
		AutoMigrate:       true,
		DBMaxOpenConns:    10,
		DBMaxIdleConns:    5,
		DBConnMaxLifetime: 30 * time.Minute,
		SiteURL:           "http://localhost:8080",
		IDDomain:          "example.com",
		IdentityHeader:    "X-Provider-Id",
		MaxBodyBytes:      1 << 20,
		FetchTimeout:      10 * time.Second,
		FetchAttempts:     3,
		ShutdownTimeout:   10 * time.Second,
	}
}

func Load() (Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.ServiceName = envString("SERVICE_NAME", cfg.ServiceName)
	cfg.HTTPPort = envString("HTTP_PORT", cfg.HTTPPort)
	cfg.PostgresDSN = envString("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.AutoMigrate = envBool("AUTO_MIGRATE", cfg.AutoMigrate)
	cfg.DBLogQueries = envBool("DB_LOG_QUERIES", cfg.DBLogQueries)
	cfg.SiteURL = strings.TrimRight(envString("SITE_URL", cfg.SiteURL), "/")
	cfg.IDDomain = envString("ID_DOMAIN", cfg.IDDomain)
	cfg.IdentityHeader = envString("IDENTITY_HEADER", cfg.IdentityHeader)
	cfg.HarvestToken = envString("HARVEST_TOKEN", cfg.HarvestToken)

	var err error
	if cfg.MaxBodyBytes, err = envInt64("MAX_BODY_BYTES", cfg.MaxBodyBytes); err != nil {
		return Config{}, err
	}
	if cfg.FetchTimeout, err = envDuration("FETCH_TIMEOUT", cfg.FetchTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = envDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	if cfg.DBConnMaxLifetime, err = envDuration("DB_CONN_MAX_LIFETIME", cfg.DBConnMaxLifetime); err != nil {
		return Config{}, err
	}
	openConns, err := envInt64("DB_MAX_OPEN_CONNS", int64(cfg.DBMaxOpenConns))
	if err != nil {
		return Config{}, err
	}
	cfg.DBMaxOpenConns = int(openConns)
	idleConns, err := envInt64("DB_MAX_IDLE_CONNS", int64(cfg.DBMaxIdleConns))
	if err != nil {
		return Config{}, err
	}
	cfg.DBMaxIdleConns = int(idleConns)
	attempts, err := envInt64("FETCH_ATTEMPTS", int64(cfg.FetchAttempts))
	if err != nil {
		return Config{}, err
	}
	cfg.FetchAttempts = int(attempts)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func envString(name string, fallback string) string {
	if raw := strings.TrimSpace(os.Getenv(name)); raw != "" {
		return raw
	}
	return fallback
}

func envInt64(name string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return value, nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", name, err)
	}
	return value, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
