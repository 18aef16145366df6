// Package config provides centralized configuration for aircare runtime values.
//
// Values come from defaults, then an optional YAML file, then AIRCARE_*
// environment variables, each layer overriding the previous one.
package config

import (
	"os"
	"strconv"
	"time"
)

// RuntimeConfig holds all runtime configuration values.
type RuntimeConfig struct {
	// Remote maintenance collection
	Gateway GatewayConfig `yaml:"gateway"`

	// HTTP client configuration, shared by the gateway and webhooks
	HTTP HTTPConfig `yaml:"http"`

	// Notification scheduler configuration
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Event defaults and limits
	Events EventsConfig `yaml:"events"`

	// Storage configuration
	Storage StorageConfig `yaml:"storage"`
}

// GatewayConfig locates the remote REST collection.
type GatewayConfig struct {
	// BaseURL is the server root.
	// Default: http://localhost:5000
	BaseURL string `yaml:"base_url"`

	// Routes are the collection paths relative to BaseURL.
	Routes RoutesConfig `yaml:"routes"`
}

// RoutesConfig names each remote collection path.
type RoutesConfig struct {
	Maintenance string `yaml:"maintenance"`
	ACUnits     string `yaml:"ac_units"`
	Users       string `yaml:"users"`
	Login       string `yaml:"login"`
	Statistics  string `yaml:"statistics"`
}

// HTTPConfig holds HTTP client configuration.
type HTTPConfig struct {
	// Timeout is the per-request timeout.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the maximum number of attempts for idempotent requests.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// RetryDelays are the delays before each attempt.
	// Default: [0s, 1s, 5s]
	RetryDelays []time.Duration `yaml:"retry_delays"`
}

// SchedulerConfig holds notification scheduler configuration.
type SchedulerConfig struct {
	// CheckInterval is how often upcoming events are compared with the clock.
	// Default: 1s
	CheckInterval time.Duration `yaml:"check_interval"`

	// RefreshInterval is how often the watch view reloads events from the server.
	// Default: 1m
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// EventsConfig holds event defaults.
type EventsConfig struct {
	// DefaultEndTime is the window end used when none is given.
	// Default: 23:59
	DefaultEndTime string `yaml:"default_end_time"`

	// HistoryLimit caps the completed visits shown with an event.
	// Default: 3
	HistoryLimit int `yaml:"history_limit"`

	// SeriesLimit caps how many events one --repeat rule may create.
	// Default: 52
	SeriesLimit int `yaml:"series_limit"`
}

// StorageConfig holds local storage configuration.
type StorageConfig struct {
	// Path is the local database directory. Empty means the XDG data dir.
	Path string `yaml:"path"`
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Gateway: GatewayConfig{
			BaseURL: "http://localhost:5000",
			Routes: RoutesConfig{
				Maintenance: "/api/maintenance",
				ACUnits:     "/api/ac",
				Users:       "/users",
				Login:       "/auth/login",
				Statistics:  "/api/employee-statistics",
			},
		},
		HTTP: HTTPConfig{
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			RetryDelays: []time.Duration{
				0,
				1 * time.Second,
				5 * time.Second,
			},
		},
		Scheduler: SchedulerConfig{
			CheckInterval:   1 * time.Second,
			RefreshInterval: 1 * time.Minute,
		},
		Events: EventsConfig{
			DefaultEndTime: "23:59",
			HistoryLimit:   3,
			SeriesLimit:    52,
		},
	}
}

// Global holds the global runtime configuration instance.
var Global = initGlobal()

// initGlobal initializes the global config with defaults, the config file
// and environment overrides.
func initGlobal() *RuntimeConfig {
	cfg := DefaultRuntimeConfig()
	_ = cfg.LoadFile(FilePath())
	cfg.loadFromEnv()
	return cfg
}

// loadFromEnv loads configuration overrides from environment variables.
// Unparseable values are ignored.
func (c *RuntimeConfig) loadFromEnv() {
	if v := os.Getenv("AIRCARE_BASE_URL"); v != "" {
		c.Gateway.BaseURL = v
	}

	if v := os.Getenv("AIRCARE_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HTTP.Timeout = d
		}
	}
	if v := os.Getenv("AIRCARE_HTTP_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.HTTP.MaxRetries = n
		}
	}

	if v := os.Getenv("AIRCARE_CHECK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Scheduler.CheckInterval = d
		}
	}
	if v := os.Getenv("AIRCARE_REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Scheduler.RefreshInterval = d
		}
	}

	if v := os.Getenv("AIRCARE_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Events.HistoryLimit = n
		}
	}

	if v := os.Getenv("AIRCARE_DATABASE"); v != "" {
		c.Storage.Path = v
	}
}

// ReloadFromEnv reloads configuration from environment variables.
func (c *RuntimeConfig) ReloadFromEnv() {
	c.loadFromEnv()
}

// Reset resets the configuration to defaults.
// This is primarily useful for testing.
func (c *RuntimeConfig) Reset() {
	defaults := DefaultRuntimeConfig()
	*c = *defaults
}
