// Package config provides configuration management for the betting tracker.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Narrative NarrativeConfig `mapstructure:"narrative"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
	Stats     StatsConfig     `mapstructure:"stats"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP API listener
type ServerConfig struct {
	Host                   string   `mapstructure:"host"`
	Port                   int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds     int      `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds    int      `mapstructure:"write_timeout_seconds" validate:"gte=0"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds" validate:"required,gt=0"`
	AllowedOrigins         []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig represents the record store. The memory driver keeps bets in
// process and needs no connection settings.
type DatabaseConfig struct {
	Driver         string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	Host           string `mapstructure:"host" validate:"required_if=Driver postgres"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required_if=Driver postgres"`
	User           string `mapstructure:"user" validate:"required_if=Driver postgres"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
	MinConnections int    `mapstructure:"min_connections" validate:"gte=0"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
}

// RedisConfig represents the shared login throttle store
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// AuthConfig represents session and login throttling settings
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret" validate:"required,min=16"`
	TokenTTLHours      int    `mapstructure:"token_ttl_hours" validate:"required,gt=0"`
	CookieSecure       bool   `mapstructure:"cookie_secure"`
	LoginMaxAttempts   int    `mapstructure:"login_max_attempts" validate:"required,gt=0"`
	LoginWindowSeconds int    `mapstructure:"login_window_seconds" validate:"required,gt=0"`
	AllowRegistration  bool   `mapstructure:"allow_registration"`
}

// NarrativeConfig represents the language-model endpoint used for analysis
type NarrativeConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	BaseURL           string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey            string  `mapstructure:"api_key"`
	Model             string  `mapstructure:"model" validate:"required_if=Enabled true"`
	Temperature       float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens         int     `mapstructure:"max_tokens" validate:"gte=0"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	RetryAttempts     int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RequestsPerMinute int     `mapstructure:"requests_per_minute" validate:"gte=0"`
	// BreakerFailures of 0 disables the circuit breaker.
	BreakerFailures        int `mapstructure:"breaker_failures" validate:"gte=0"`
	BreakerWindowSeconds   int `mapstructure:"breaker_window_seconds" validate:"gte=0"`
	BreakerCooldownSeconds int `mapstructure:"breaker_cooldown_seconds" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// StatsConfig controls the periodic profile statistics refresh
type StatsConfig struct {
	RefreshEnabled  bool   `mapstructure:"refresh_enabled"`
	RefreshSchedule string `mapstructure:"refresh_schedule" validate:"required_if=RefreshEnabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		sslMode,
	)
}

// ListenAddr returns the host:port the API server binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// TokenTTL returns the session token lifetime
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

// LoginWindow returns the login throttle window
func (c *Config) LoginWindow() time.Duration {
	return time.Duration(c.Auth.LoginWindowSeconds) * time.Second
}
