// Package websocket serves chats over websocket connections. Each connection
// is bound to one chat; a chat may have several connections open at once and
// replies are fanned out to all of them.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/hay-kot/remindme/internal/bot"
	"github.com/hay-kot/remindme/internal/core/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBuffer     = 64
)

var (
	// ErrChatOffline is returned by Send when the chat has no open connection.
	ErrChatOffline = errors.New("chat has no open connection")
	// ErrBufferFull is returned by Send when every connection of the chat is
	// too slow to accept the frame.
	ErrBufferFull = errors.New("send buffer full")
)

// Frame types.
const (
	FrameHello   = "hello"
	FrameMessage = "message"
)

// Frame is the JSON envelope exchanged with clients.
type Frame struct {
	Type     string     `json:"type"`
	ChatID   string     `json:"chat_id,omitempty"`
	User     string     `json:"user,omitempty"`
	Text     string     `json:"text,omitempty"`
	Keyboard [][]string `json:"keyboard,omitempty"`
}

// Handler receives the messages read from connections and is told when the
// last connection of a chat goes away.
type Handler interface {
	HandleMessage(ctx context.Context, msg bot.Message)
	EndChat(ctx context.Context, chatID string)
}

// Hub tracks the open connections per chat. It implements bot.Sender.
type Hub struct {
	log      zerolog.Logger
	origins  []string
	upgrader gws.Upgrader

	mu    sync.RWMutex
	chats map[string]map[*client]struct{}
}

var _ bot.Sender = (*Hub)(nil)

// NewHub creates a hub. allowedOrigins are glob patterns matched against the
// Origin header; an empty list only accepts same-host origins.
func NewHub(log zerolog.Logger, allowedOrigins []string) *Hub {
	h := &Hub{
		log:     log,
		origins: allowedOrigins,
		chats:   make(map[string]map[*client]struct{}),
	}
	h.upgrader = gws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Online reports whether the chat has at least one open connection.
func (h *Hub) Online(chatID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.chats[chatID]) > 0
}

// Send queues a message frame on every connection of r.ChatID.
func (h *Hub) Send(_ context.Context, r bot.Reply) error {
	data, err := json.Marshal(Frame{
		Type:     FrameMessage,
		ChatID:   r.ChatID,
		Text:     r.Text,
		Keyboard: r.Keyboard,
	})
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	conns := h.chats[r.ChatID]
	if len(conns) == 0 {
		return fmt.Errorf("chat %s: %w", r.ChatID, ErrChatOffline)
	}

	sent := 0
	for c := range conns {
		select {
		case c.send <- data:
			sent++
		default:
			h.log.Warn().Str("chat_id", r.ChatID).Str("conn", c.id).Msg("connection buffer full, dropping frame")
		}
	}
	if sent == 0 {
		return fmt.Errorf("chat %s: %w", r.ChatID, ErrBufferFull)
	}
	return nil
}

// Close disconnects every client. The read loops notice and unregister.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conns := range h.chats {
		for c := range conns {
			_ = c.conn.Close()
		}
	}
}

// Handler returns the HTTP handler upgrading requests to websocket
// connections. The chat id comes from the "chat" query parameter; a new one is
// generated when it is missing.
func (h *Hub) Handler(next Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID := r.URL.Query().Get("chat")
		if chatID == "" {
			chatID = uuid.NewString()
		}

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
			return
		}

		c := &client{
			id:     uuid.NewString(),
			hub:    h,
			conn:   conn,
			chatID: chatID,
			send:   make(chan []byte, sendBuffer),
		}

		ctx := logging.WithTransport(r.Context(), "websocket")
		ctx = logging.WithChatID(ctx, chatID)

		h.register(c)
		h.log.Info().Ctx(ctx).Str("conn", c.id).Str("remote", r.RemoteAddr).Msg("client connected")

		hello, _ := json.Marshal(Frame{Type: FrameHello, ChatID: chatID})
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(gws.TextMessage, hello); err != nil {
			h.log.Warn().Ctx(ctx).Err(err).Msg("failed to send hello")
			h.unregister(ctx, c, next)
			_ = conn.Close()
			return
		}

		go c.writePump()
		c.readPump(ctx, next)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.chats[c.chatID]
	if !ok {
		conns = make(map[*client]struct{})
		h.chats[c.chatID] = conns
	}
	conns[c] = struct{}{}
}

// unregister removes c and ends the chat when c was its last connection.
func (h *Hub) unregister(ctx context.Context, c *client, next Handler) {
	h.mu.Lock()
	conns := h.chats[c.chatID]
	_, present := conns[c]
	if present {
		delete(conns, c)
		close(c.send)
	}
	last := present && len(conns) == 0
	if last {
		delete(h.chats, c.chatID)
	}
	h.mu.Unlock()

	if !present {
		return
	}

	h.log.Info().Ctx(ctx).Str("conn", c.id).Bool("last", last).Msg("client disconnected")
	if last {
		next.EndChat(context.WithoutCancel(ctx), c.chatID)
	}
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	if len(h.origins) == 0 {
		return strings.EqualFold(u.Host, r.Host)
	}

	for _, pattern := range h.origins {
		if ok, _ := doublestar.Match(pattern, origin); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, u.Host); ok {
			return true
		}
	}

	h.log.Warn().Str("origin", origin).Msg("rejected websocket origin")
	return false
}
