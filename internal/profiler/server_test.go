package profiler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_StartAndShutdown(t *testing.T) {
	server := New(zerolog.Nop(), "127.0.0.1:0")
	assert.Empty(t, server.Addr())

	require.NoError(t, server.Start(), "Start() error")
	assert.NotEmpty(t, server.Addr())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, server.Shutdown(shutdownCtx), "Shutdown() error")
}

func TestServer_BadAddr(t *testing.T) {
	server := New(zerolog.Nop(), "not an address")
	assert.Error(t, server.Start())
}

func TestServer_PprofEndpoints(t *testing.T) {
	server := New(zerolog.Nop(), "127.0.0.1:0")
	require.NoError(t, server.Start(), "Start() error")
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	baseURL := "http://" + server.Addr()

	tests := []struct {
		name     string
		endpoint string
	}{
		{name: "index", endpoint: "/debug/pprof/"},
		{name: "heap", endpoint: "/debug/pprof/heap"},
		{name: "cmdline", endpoint: "/debug/pprof/cmdline"},
		{name: "symbol", endpoint: "/debug/pprof/symbol"},
		{name: "trace", endpoint: "/debug/pprof/trace?seconds=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(baseURL + tt.endpoint)
			require.NoError(t, err, "GET %s error", tt.endpoint)
			defer func() {
				_ = resp.Body.Close()
			}()

			assert.Equal(t, http.StatusOK, resp.StatusCode, "GET %s", tt.endpoint)
		})
	}
}
