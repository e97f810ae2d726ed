package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	defaults := DefaultConfig()
	assert.Equal(t, defaults.Server.Addr, cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Telegram.PollTimeout)
	assert.Equal(t, "https://api.telegram.org", cfg.Telegram.APIURL)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Console.User)
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  allowed_origins:
    - "localhost:*"
telegram:
  token: "123:abc"
  poll_timeout: 10s
  allowed_chats: [42, 43]
console:
  color: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"localhost:*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, 10*time.Second, cfg.Telegram.PollTimeout)
	assert.Equal(t, 5*time.Second, cfg.Telegram.RetryDelay, "unset values keep defaults")
	assert.Equal(t, []int64{42, 43}, cfg.Telegram.AllowedChats)
	require.NotNil(t, cfg.Console.Color)
	assert.False(t, *cfg.Console.Color)
	assert.Equal(t, "tokyo-night", cfg.Console.Theme)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [")

	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, "telegram:\n  poll_timeout: 10ms\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "telegram.poll_timeout")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty addr", mutate: func(c *Config) { c.Server.Addr = "" }, wantErr: "server.addr"},
		{name: "zero retry", mutate: func(c *Config) { c.Telegram.RetryDelay = 0 }, wantErr: "telegram.retry_delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
