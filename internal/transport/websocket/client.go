package websocket

import (
	"context"
	"encoding/json"
	"time"

	gws "github.com/gorilla/websocket"

	"github.com/hay-kot/remindme/internal/bot"
	"github.com/hay-kot/remindme/internal/core/logging"
)

type client struct {
	id     string
	hub    *Hub
	conn   *gws.Conn
	chatID string
	send   chan []byte
}

// readPump feeds incoming frames to next until the connection fails. It owns
// the connection teardown.
func (c *client) readPump(ctx context.Context, next Handler) {
	log := c.hub.log

	defer func() {
		c.hub.unregister(ctx, c, next)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if gws.IsUnexpectedCloseError(err, gws.CloseGoingAway, gws.CloseNormalClosure, gws.CloseNoStatusReceived) {
				log.Warn().Ctx(ctx).Err(err).Str("conn", c.id).Msg("unexpected close")
			}
			return
		}

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			log.Debug().Ctx(ctx).Err(err).Str("conn", c.id).Msg("ignoring malformed frame")
			continue
		}
		if f.Type != "" && f.Type != FrameMessage {
			log.Debug().Ctx(ctx).Str("type", f.Type).Msg("ignoring frame")
			continue
		}

		msgCtx := ctx
		if f.User != "" {
			msgCtx = logging.WithUser(ctx, f.User)
		}
		next.HandleMessage(msgCtx, bot.Message{ChatID: c.chatID, User: f.User, Text: f.Text})
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
// It is the only writer once started.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(gws.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(gws.TextMessage, data); err != nil {
				c.hub.log.Debug().Err(err).Str("conn", c.id).Msg("write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(gws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
