package config

import (
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.AllowedOrigins = []string{"localhost:*", "*.example.com"}

	assert.NoError(t, cfg.ValidateDeep())
}

func TestValidateDeep_InvalidAddr(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Addr = "8080"

	err := cfg.ValidateDeep()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 1)
	assert.Contains(t, fieldErrs[0].Field, "server.addr")
}

func TestValidateDeep_InvalidOrigins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.AllowedOrigins = []string{"ok.example.com", "[bad", "{also"}

	err := cfg.ValidateDeep()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
	assert.Contains(t, fieldErrs[0].Field, "server.allowed_origins[1]")
	assert.Contains(t, fieldErrs[0].Err.Error(), "invalid pattern")
}

func TestValidateDeep_InvalidAPIURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Telegram.APIURL = "ftp://api.telegram.org"

	err := cfg.ValidateDeep()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs[0].Field, "telegram.api_url")
}

func TestRequireTelegramToken(t *testing.T) {
	cfg := DefaultConfig()

	err := cfg.RequireTelegramToken()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs[0].Field, "telegram.token")

	cfg.Telegram.Token = "123:abc"
	assert.NoError(t, cfg.RequireTelegramToken())
}

func TestValidateDeep_UnknownTheme(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Console.Theme = "solarized"

	err := cfg.ValidateDeep()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs[0].Field, "console.theme")
	assert.Contains(t, fieldErrs[0].Err.Error(), "tokyo-night")
}
