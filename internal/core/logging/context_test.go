package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	ctx = WithChatID(ctx, "chat-1")
	ctx = WithUser(ctx, "artem")
	ctx = WithTransport(ctx, "telegram")

	assert.Equal(t, "chat-1", GetChatID(ctx))
	assert.Equal(t, "artem", GetUser(ctx))
	assert.Equal(t, "telegram", GetTransport(ctx))
}

func TestContextValues_NotPresent(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetChatID(ctx))
	assert.Empty(t, GetUser(ctx))
	assert.Empty(t, GetTransport(ctx))
}
