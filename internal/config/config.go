package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teemow/todoistguard/internal/todoist"
)

// Transport types supported by the serve command.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Config holds the runtime configuration of the server.
type Config struct {
	Todoist TodoistConfig `yaml:"todoist"`
	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// TodoistConfig configures the REST client.
type TodoistConfig struct {
	APIToken   string        `yaml:"api_token"`
	BaseURL    string        `yaml:"base_url"`
	APIVersion string        `yaml:"api_version"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RateLimit  float64       `yaml:"rate_limit"`
	RateBurst  int           `yaml:"rate_burst"`
}

// ServerConfig configures the MCP transport.
type ServerConfig struct {
	Transport string `yaml:"transport"`
	HTTPAddr  string `yaml:"http_addr"`
	ReadOnly  bool   `yaml:"read_only"`
}

// MetricsConfig holds configuration for the dedicated metrics server.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Todoist: TodoistConfig{
			BaseURL:    todoist.DefaultBaseURL,
			APIVersion: todoist.DefaultAPIVersion,
			Timeout:    todoist.DefaultTimeout,
			MaxRetries: todoist.DefaultMaxRetries,
			RateLimit:  todoist.DefaultRateLimit,
			RateBurst:  todoist.DefaultRateBurst,
		},
		Server: ServerConfig{
			Transport: TransportStdio,
			HTTPAddr:  ":8080",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
		},
	}
}

// Load reads the YAML file at path on top of the defaults. An empty path or a
// missing file leaves the defaults untouched.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. Unset or empty
// variables are ignored; malformed values are errors.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("TODOIST_API_TOKEN"); v != "" {
		c.Todoist.APIToken = v
	}
	if v := os.Getenv("TODOIST_BASE_URL"); v != "" {
		c.Todoist.BaseURL = v
	}
	if v := os.Getenv("TODOIST_API_VERSION"); v != "" {
		c.Todoist.APIVersion = v
	}
	if v := os.Getenv("TODOIST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TODOIST_TIMEOUT %q: %w", v, err)
		}
		c.Todoist.Timeout = d
	}
	if v := os.Getenv("TODOIST_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TODOIST_MAX_RETRIES %q: %w", v, err)
		}
		c.Todoist.MaxRetries = n
	}
	if v := os.Getenv("TODOIST_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TODOIST_RATE_LIMIT %q: %w", v, err)
		}
		c.Todoist.RateLimit = f
	}
	if v := os.Getenv("TODOIST_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TODOIST_RATE_BURST %q: %w", v, err)
		}
		c.Todoist.RateBurst = n
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid METRICS_ENABLED %q: %w", v, err)
		}
		c.Metrics.Enabled = b
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Todoist.APIToken) == "" {
		return fmt.Errorf("todoist API token is required (set TODOIST_API_TOKEN or todoist.api_token)")
	}
	switch c.Server.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s)",
			c.Server.Transport, TransportStdio, TransportStreamableHTTP)
	}
	if c.Server.Transport == TransportStreamableHTTP && c.Server.HTTPAddr == "" {
		return fmt.Errorf("http address is required for %s transport", TransportStreamableHTTP)
	}
	if c.Todoist.Timeout <= 0 {
		return fmt.Errorf("todoist timeout must be positive, got %s", c.Todoist.Timeout)
	}
	if c.Todoist.MaxRetries < 0 {
		return fmt.Errorf("todoist max retries must not be negative, got %d", c.Todoist.MaxRetries)
	}
	if c.Todoist.RateLimit <= 0 {
		return fmt.Errorf("todoist rate limit must be positive, got %v", c.Todoist.RateLimit)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics address is required when metrics are enabled")
	}
	return nil
}

// ClientConfig converts the Todoist section into a client configuration.
func (c *Config) ClientConfig() todoist.Config {
	return todoist.Config{
		Token:      c.Todoist.APIToken,
		BaseURL:    c.Todoist.BaseURL,
		APIVersion: c.Todoist.APIVersion,
		Timeout:    c.Todoist.Timeout,
		MaxRetries: c.Todoist.MaxRetries,
		RateLimit:  c.Todoist.RateLimit,
		RateBurst:  c.Todoist.RateBurst,
	}
}
