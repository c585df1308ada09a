// Package config provides configuration management for the Tipster Edge services.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Engine   EngineConfig   `mapstructure:"engine" validate:"required"`
	Parlays  ParlayConfig   `mapstructure:"parlays" validate:"required"`
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
	Client   ClientConfig   `mapstructure:"client"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// EngineConfig holds the tunable CLV engine policy
type EngineConfig struct {
	MaxStakeFraction float64 `mapstructure:"max_stake_fraction" validate:"required,gt=0,lte=1"`
	// StrictOdds rejects odds <= 0 instead of returning Inf/NaN metrics.
	StrictOdds   bool `mapstructure:"strict_odds"`
	BatchWorkers int  `mapstructure:"batch_workers" validate:"gte=0"`
	MaxBatchSize int  `mapstructure:"max_batch_size" validate:"required,gt=0"`
}

// ParlayConfig controls the suggested parlay pipeline
type ParlayConfig struct {
	PoolLimit       int    `mapstructure:"pool_limit" validate:"required,gt=0"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	RefreshSchedule string `mapstructure:"refresh_schedule" validate:"required,cron"`
	LookbackHours   int    `mapstructure:"lookback_hours" validate:"required,gt=0"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Port                  int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins        []string `mapstructure:"allowed_origins"`
	RequestTimeoutSeconds int      `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	DefaultListLimit      int      `mapstructure:"default_list_limit" validate:"required,gt=0"`
	MaxListLimit          int      `mapstructure:"max_list_limit" validate:"required,gtefield=DefaultListLimit"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// ClientConfig configures the API client used by edgectl
type ClientConfig struct {
	BaseURL        string  `mapstructure:"base_url" validate:"omitempty,url"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"gte=0"`
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
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ServerAddr returns the listen address for the API server
func (c *Config) ServerAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// RequestTimeout returns the per-request timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// ParlayCacheTTL returns how long parlay suggestions stay cached
func (c *Config) ParlayCacheTTL() time.Duration {
	return time.Duration(c.Parlays.CacheTTLSeconds) * time.Second
}
