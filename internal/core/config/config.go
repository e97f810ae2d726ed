// Package config handles configuration loading and validation for remindme.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hay-kot/remindme/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Telegram TelegramConfig `yaml:"telegram"`
	Console  ConsoleConfig  `yaml:"console"`
}

// ServerConfig configures the HTTP server hosting the websocket transport.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// AllowedOrigins are glob patterns matched against the websocket Origin
	// header or its host. Empty means same host only.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// TelegramConfig configures the Telegram Bot API transport.
type TelegramConfig struct {
	Token        string        `yaml:"token"`
	APIURL       string        `yaml:"api_url"`
	PollTimeout  time.Duration `yaml:"poll_timeout"`
	RetryDelay   time.Duration `yaml:"retry_delay"`
	AllowedChats []int64       `yaml:"allowed_chats"` // empty = any chat
}

// ConsoleConfig configures the terminal transport.
type ConsoleConfig struct {
	Color *bool  `yaml:"color"` // nil = color when stdout is a terminal
	Theme string `yaml:"theme"`
	User  string `yaml:"user"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Telegram: TelegramConfig{
			APIURL:      "https://api.telegram.org",
			PollTimeout: 30 * time.Second,
			RetryDelay:  5 * time.Second,
		},
		Console: ConsoleConfig{
			Theme: styles.DefaultTheme,
			User:  defaultUser(),
		},
	}
}

// Load reads configuration from the given path. A missing file yields the
// defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Telegram.APIURL == "" {
		c.Telegram.APIURL = defaults.Telegram.APIURL
	}
	if c.Telegram.PollTimeout == 0 {
		c.Telegram.PollTimeout = defaults.Telegram.PollTimeout
	}
	if c.Telegram.RetryDelay == 0 {
		c.Telegram.RetryDelay = defaults.Telegram.RetryDelay
	}
	if c.Console.Theme == "" {
		c.Console.Theme = defaults.Console.Theme
	}
	if c.Console.User == "" {
		c.Console.User = defaults.Console.User
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	if c.Telegram.PollTimeout < time.Second {
		return fmt.Errorf("telegram.poll_timeout must be at least 1s")
	}

	if c.Telegram.RetryDelay <= 0 {
		return fmt.Errorf("telegram.retry_delay must be positive")
	}

	return nil
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "you"
}
