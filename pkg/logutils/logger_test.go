package logutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "remindme.log")

	logger, closer, err := New("info", file)
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Str("chat_id", "c1").Msg("visible")
	closer()

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "c1", entry["chat_id"])
	assert.Contains(t, entry, "time")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New("loud", "")
	assert.Error(t, err)
}
