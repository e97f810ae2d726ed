package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/hay-kot/remindme/internal/core/styles"
)

// ValidateDeep runs Validate and then checks values that need parsing: the
// listen address, origin patterns, the Telegram API URL and the console theme. Field errors are
// reported together as criterio.FieldErrors.
func (c *Config) ValidateDeep() error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		criterio.Run("server.addr", c.Server.Addr, validListenAddr),
		c.validateOrigins(),
		criterio.Run("telegram.api_url", c.Telegram.APIURL, validHTTPURL),
		criterio.Run("console.theme", c.Console.Theme, validTheme),
	)
}

// RequireTelegramToken reports a field error when no bot token is configured.
func (c *Config) RequireTelegramToken() error {
	if c.Telegram.Token == "" {
		return criterio.NewFieldErrors("telegram.token", fmt.Errorf("a bot token is required"))
	}
	return nil
}

func (c *Config) validateOrigins() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.Server.AllowedOrigins {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("server.allowed_origins[%d]", i), fmt.Errorf("invalid pattern %q", pattern))
		}
	}
	return errs.ToError()
}

func validListenAddr(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}
	return nil
}

func validHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("url has no host")
	}
	return nil
}

func validTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(styles.ThemeNames(), ", "))
	}
	return nil
}
