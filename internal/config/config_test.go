package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todoistguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "https://api.todoist.com", cfg.Todoist.BaseURL)
	assert.Equal(t, "v1", cfg.Todoist.APIVersion)
	assert.Equal(t, 30*time.Second, cfg.Todoist.Timeout)
	assert.Equal(t, TransportStdio, cfg.Server.Transport)
	assert.False(t, cfg.Server.ReadOnly)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestLoad(t *testing.T) {
	t.Run("empty path keeps defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("missing file keeps defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("file overrides only what it sets", func(t *testing.T) {
		path := writeFile(t, `
todoist:
  api_token: secret
  timeout: 5s
  rate_limit: 0.5
server:
  transport: streamable-http
  read_only: true
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "secret", cfg.Todoist.APIToken)
		assert.Equal(t, 5*time.Second, cfg.Todoist.Timeout)
		assert.Equal(t, 0.5, cfg.Todoist.RateLimit)
		assert.Equal(t, 50, cfg.Todoist.RateBurst)
		assert.Equal(t, TransportStreamableHTTP, cfg.Server.Transport)
		assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
		assert.True(t, cfg.Server.ReadOnly)
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := Load(writeFile(t, "todoist: [unclosed"))
		assert.Error(t, err)
	})
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TODOIST_API_TOKEN", "from-env")
	t.Setenv("TODOIST_API_VERSION", "v2")
	t.Setenv("TODOIST_TIMEOUT", "45s")
	t.Setenv("TODOIST_MAX_RETRIES", "5")
	t.Setenv("TODOIST_RATE_BURST", "10")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("METRICS_ADDR", ":9999")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "from-env", cfg.Todoist.APIToken)
	assert.Equal(t, "v2", cfg.Todoist.APIVersion)
	assert.Equal(t, 45*time.Second, cfg.Todoist.Timeout)
	assert.Equal(t, 5, cfg.Todoist.MaxRetries)
	assert.Equal(t, 10, cfg.Todoist.RateBurst)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9999", cfg.Metrics.Addr)
}

func TestApplyEnv_Malformed(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"TODOIST_TIMEOUT", "soon"},
		{"TODOIST_MAX_RETRIES", "many"},
		{"TODOIST_RATE_LIMIT", "fast"},
		{"TODOIST_RATE_BURST", "1.5"},
		{"METRICS_ENABLED", "perhaps"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			err := Default().ApplyEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Todoist.APIToken = "token"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing token", mutate: func(c *Config) { c.Todoist.APIToken = " " }, wantErr: "token is required"},
		{name: "bad transport", mutate: func(c *Config) { c.Server.Transport = "sse" }, wantErr: "unsupported transport"},
		{name: "http without addr", mutate: func(c *Config) {
			c.Server.Transport = TransportStreamableHTTP
			c.Server.HTTPAddr = ""
		}, wantErr: "http address"},
		{name: "zero timeout", mutate: func(c *Config) { c.Todoist.Timeout = 0 }, wantErr: "timeout must be positive"},
		{name: "negative retries", mutate: func(c *Config) { c.Todoist.MaxRetries = -1 }, wantErr: "max retries"},
		{name: "zero rate", mutate: func(c *Config) { c.Todoist.RateLimit = 0 }, wantErr: "rate limit"},
		{name: "metrics without addr", mutate: func(c *Config) { c.Metrics.Addr = "" }, wantErr: "metrics address"},
		{name: "metrics disabled without addr", mutate: func(c *Config) {
			c.Metrics.Enabled = false
			c.Metrics.Addr = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClientConfig(t *testing.T) {
	cfg := Default()
	cfg.Todoist.APIToken = "token"
	cfg.Todoist.RateLimit = 2

	cc := cfg.ClientConfig()

	assert.Equal(t, "token", cc.Token)
	assert.Equal(t, cfg.Todoist.BaseURL, cc.BaseURL)
	assert.Equal(t, 2.0, cc.RateLimit)
	assert.Equal(t, cfg.Todoist.Timeout, cc.Timeout)
}
