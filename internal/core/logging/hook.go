package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies chat_id, user and transport from the event context onto
// log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if chatID := GetChatID(ctx); chatID != "" {
		e.Str("chat_id", chatID)
	}
	if user := GetUser(ctx); user != "" {
		e.Str("user", user)
	}
	if transport := GetTransport(ctx); transport != "" {
		e.Str("transport", transport)
	}
}
