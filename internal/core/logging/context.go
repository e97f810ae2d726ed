package logging

import "context"

type contextKey string

const (
	chatIDKey    contextKey = "chat_id"
	userKey      contextKey = "user"
	transportKey contextKey = "transport"
)

// WithChatID adds a chat ID to the context.
func WithChatID(ctx context.Context, chatID string) context.Context {
	return context.WithValue(ctx, chatIDKey, chatID)
}

// WithUser adds the display name of the sender to the context.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// WithTransport records which transport delivered the update.
func WithTransport(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, transportKey, name)
}

// GetChatID returns the chat ID from the context, or an empty string.
func GetChatID(ctx context.Context) string {
	return stringValue(ctx, chatIDKey)
}

// GetUser returns the user from the context, or an empty string.
func GetUser(ctx context.Context) string {
	return stringValue(ctx, userKey)
}

// GetTransport returns the transport name from the context, or an empty string.
func GetTransport(ctx context.Context) string {
	return stringValue(ctx, transportKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
