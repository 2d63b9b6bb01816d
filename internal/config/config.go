package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/segyhp/feedesk/internal/domain"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Data sources the dashboard can read from
const (
	SourceAPI      = "api"
	SourcePostgres = "postgres"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Source    string          `mapstructure:"DATA_SOURCE"`
	Backend   BackendConfig   `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Dashboard DashboardConfig `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

// BackendConfig points at the institution's CRUD API
type BackendConfig struct {
	URL     string `mapstructure:"BACKEND_URL"`
	Token   string `mapstructure:"BACKEND_TOKEN"`
	Timeout string `mapstructure:"BACKEND_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host      string `mapstructure:"REDIS_HOST"`
	Port      string `mapstructure:"REDIS_PORT"`
	Password  string `mapstructure:"REDIS_PASSWORD"`
	DB        int    `mapstructure:"REDIS_DB"`
	DigestTTL string `mapstructure:"DIGEST_TTL"`
}

type SchedulerConfig struct {
	DigestSpec   string `mapstructure:"SCHEDULER_DIGEST_SPEC"`
	ReminderSpec string `mapstructure:"SCHEDULER_REMINDER_SPEC"`
	Timezone     string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type DashboardConfig struct {
	PaymentsMode     string `mapstructure:"PAYMENTS_TAB_MODE"`
	Timezone         string `mapstructure:"DASHBOARD_TIMEZONE"`
	FlagOverpayments bool   `mapstructure:"FLAG_OVERPAYMENTS"`
	LoadTimeout      string `mapstructure:"DASHBOARD_LOAD_TIMEOUT"`
	ViewerTTL        string `mapstructure:"DASHBOARD_VIEWER_TTL"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Every key needs a default so AutomaticEnv overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("DATA_SOURCE", SourceAPI)
	v.SetDefault("BACKEND_URL", "http://localhost:5000/api")
	v.SetDefault("BACKEND_TOKEN", "")
	v.SetDefault("BACKEND_TIMEOUT", "10s")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DIGEST_TTL", "26h")
	v.SetDefault("SCHEDULER_DIGEST_SPEC", "0 0 1 * * *")
	v.SetDefault("SCHEDULER_REMINDER_SPEC", "0 0 9 * * SUN")
	v.SetDefault("SCHEDULER_TIMEZONE", "UTC")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("PAYMENTS_TAB_MODE", domain.PaymentsAllPaid)
	v.SetDefault("DASHBOARD_TIMEZONE", "UTC")
	v.SetDefault("FLAG_OVERPAYMENTS", true)
	v.SetDefault("DASHBOARD_LOAD_TIMEOUT", "20s")
	v.SetDefault("DASHBOARD_VIEWER_TTL", "30m")
	v.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.Source {
	case SourceAPI:
		u, err := url.Parse(c.Backend.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("BACKEND_URL must be an absolute URL, got %q", c.Backend.URL)
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_SOURCE is postgres")
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be %q or %q, got %q", SourceAPI, SourcePostgres, c.Source)
	}

	switch c.Dashboard.PaymentsMode {
	case domain.PaymentsAllPaid, domain.PaymentsPaidInWindow:
	default:
		return fmt.Errorf("PAYMENTS_TAB_MODE must be all_paid or paid_in_window, got %q", c.Dashboard.PaymentsMode)
	}

	for name, value := range map[string]string{
		"BACKEND_TIMEOUT":        c.Backend.Timeout,
		"DIGEST_TTL":             c.Redis.DigestTTL,
		"DASHBOARD_LOAD_TIMEOUT": c.Dashboard.LoadTimeout,
		"DASHBOARD_VIEWER_TTL":   c.Dashboard.ViewerTTL,
		"HEALTH_CHECK_TIMEOUT":   c.Health.Timeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", name, err)
		}
	}

	for name, tz := range map[string]string{
		"DASHBOARD_TIMEZONE": c.Dashboard.Timezone,
		"SCHEDULER_TIMEZONE": c.Scheduler.Timezone,
	} {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("%s must be a valid IANA zone: %w", name, err)
		}
	}

	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Logging.Format)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetBackendTimeout returns the backend request timeout as duration
func (c *Config) GetBackendTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Backend.Timeout)
	return timeout
}

// GetDigestTTL returns how long a computed digest stays in Redis
func (c *Config) GetDigestTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Redis.DigestTTL)
	return ttl
}

// GetLoadTimeout returns the upper bound for one dashboard load
func (c *Config) GetLoadTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Dashboard.LoadTimeout)
	return timeout
}

// GetViewerTTL returns how long an idle viewer's dashboard state is kept
func (c *Config) GetViewerTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Dashboard.ViewerTTL)
	return ttl
}

// LogFormat returns LOG_FORMAT, or text in development and json elsewhere when unset
func (c *Config) LogFormat() string {
	if c.Logging.Format != "" {
		return c.Logging.Format
	}
	if c.IsDevelopment() {
		return "text"
	}
	return "json"
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Health.Timeout)
	return timeout
}

// Location returns the zone dashboard windows are anchored in
func (c *Config) Location() *time.Location {
	return loadLocation(c.Dashboard.Timezone)
}

// Validate has already rejected bad zones; the UTC fallback only covers an unvalidated Config.
func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SchedulerLocation returns the zone cron specs are evaluated in
func (c *Config) SchedulerLocation() *time.Location {
	return loadLocation(c.Scheduler.Timezone)
}

// RedisAddr returns host:port for the Redis client
func (c *Config) RedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}
