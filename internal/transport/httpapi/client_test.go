package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/remindme/internal/bot"
)

func TestClient(t *testing.T) {
	b, _, h := setup(t)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	c := NewClient(srv.URL+"/", srv.Client())

	got, err := c.List(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, got)

	b.HandleMessage(ctx, bot.Message{ChatID: "c1", Text: `/new_timer 30 "Team sync"`})

	got, err = c.List(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Team sync", got[0].Name)
	assert.WithinDuration(t, time.Date(2031, 6, 1, 9, 0, 30, 0, time.Local), got[0].FireAt, 0)

	require.NoError(t, c.Unset(ctx, "c1", "Team sync"))
	assert.ErrorIs(t, c.Unset(ctx, "c1", "Team sync"), bot.ErrNoActiveItem)
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "boom"})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, nil)

	_, err := c.List(context.Background(), "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500: boom")

	err = c.Unset(context.Background(), "c1", "Tea")
	require.Error(t, err)
	assert.NotErrorIs(t, err, bot.ErrNoActiveItem)
}
