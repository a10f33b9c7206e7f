package config

import (
	"time"

	"github.com/adforge/adforge/internal/ailink"
)

// Config represents the complete application configuration
// following the Fulmen Forge Workhorse Standard three-layer pattern:
// Layer 1: Crucible defaults (config/adforge/v0/adforge-defaults.yaml)
// Layer 2: User overrides (~/.config/adforge/adforge/config.yaml)
// Layer 3: Environment variables and runtime overrides
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	AILink   ailink.Config  `mapstructure:"ailink"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Trends   TrendsConfig   `mapstructure:"trends"`
	Throttle ThrottleConfig `mapstructure:"throttle"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Health   HealthConfig   `mapstructure:"health"`
	Debug    DebugConfig    `mapstructure:"debug"`
	Workers  int            `mapstructure:"workers"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains database configuration for libsql/Turso
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// EngineConfig contains creative generation defaults.
//
// Provider credentials and routing live under `ailink.*`.
type EngineConfig struct {
	DefaultModel   string        `mapstructure:"default_model"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// TrendsConfig contains Google Trends client configuration.
type TrendsConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Lang    string        `mapstructure:"lang"`

	// TZOffset is the timezone offset in minutes passed to the trends API.
	TZOffset int `mapstructure:"tz_offset"`

	// Translate enables AI translation of fetched topics by default.
	Translate      bool   `mapstructure:"translate"`
	TranslateModel string `mapstructure:"translate_model"`
}

// ThrottleConfig contains request throttle configuration.
type ThrottleConfig struct {
	// Interval is the cooldown window begun after each gated request.
	Interval time.Duration `mapstructure:"interval"`

	// TickInterval controls how often remaining time is re-announced.
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

// LoggingConfig contains logging configuration
// Supports progressive logging profiles per Fulmen Forge Workhorse Standard:
// - SIMPLE: Console output only, minimal configuration (CLI tools)
// - STRUCTURED: Structured sinks, correlation IDs (API services)
// - ENTERPRISE: Multiple sinks, middleware, throttling, policy enforcement (production)
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED, ENTERPRISE
	// See: gofulmen/docs/crucible-go/standards/observability/logging.md
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	// Enabled controls whether metrics are exposed
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format)
	// Metrics are also available at the main HTTP port in JSON format
	Port int `mapstructure:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	// Enabled controls whether health endpoints are exposed
	Enabled bool `mapstructure:"enabled"`
}

// DebugConfig contains debug and profiling configuration
type DebugConfig struct {
	// Enabled controls whether debug mode is active
	Enabled bool `mapstructure:"enabled"`

	// PprofEnabled controls whether pprof endpoints are exposed
	// WARNING: Only enable in development/staging environments
	PprofEnabled bool `mapstructure:"pprof_enabled"`
}
