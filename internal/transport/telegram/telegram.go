// Package telegram connects the bot to the Telegram Bot API using long
// polling.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/hay-kot/remindme/internal/bot"
	"github.com/hay-kot/remindme/internal/core/logging"
)

// Handler receives the messages polled from Telegram.
type Handler interface {
	HandleMessage(ctx context.Context, msg bot.Message)
}

// Options configures a Client.
type Options struct {
	APIURL       string
	Token        string
	PollTimeout  time.Duration
	RetryDelay   time.Duration
	AllowedChats []int64
	HTTPClient   *http.Client
}

// Client polls updates and sends messages. It implements bot.Sender.
type Client struct {
	log         zerolog.Logger
	api         *tgbotapi.BotAPI
	pollTimeout time.Duration
	retryDelay  time.Duration
	allowed     map[int64]struct{}
}

var _ bot.Sender = (*Client)(nil)

// New creates a client for the bot identified by opts.Token. It checks the
// token with getMe before returning.
func New(log zerolog.Logger, opts Options) (*Client, error) {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.PollTimeout + 10*time.Second}
	}

	endpoint := strings.TrimSuffix(opts.APIURL, "/") + "/bot%s/%s"
	api, err := tgbotapi.NewBotAPIWithClient(opts.Token, endpoint, hc)
	if err != nil {
		return nil, fmt.Errorf("telegram getMe: %w", redact(err))
	}

	allowed := make(map[int64]struct{}, len(opts.AllowedChats))
	for _, id := range opts.AllowedChats {
		allowed[id] = struct{}{}
	}

	log.Debug().Str("username", api.Self.UserName).Msg("telegram bot authorized")

	return &Client{
		log:         log,
		api:         api,
		pollTimeout: opts.PollTimeout,
		retryDelay:  opts.RetryDelay,
		allowed:     allowed,
	}, nil
}

// Run polls for updates and hands each message to h until ctx is cancelled.
// Updates are handled in the order Telegram returns them.
func (c *Client) Run(ctx context.Context, h Handler) error {
	ctx = logging.WithTransport(ctx, "telegram")

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(c.pollTimeout / time.Second)
	cfg.AllowedUpdates = []string{"message"}

	c.log.Info().Ctx(ctx).Dur("poll_timeout", c.pollTimeout).Msg("telegram polling started")

	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, err := c.poll(ctx, cfg)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error().Ctx(ctx).Err(err).Dur("retry_in", c.retryDelay).Msg("telegram poll failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryDelay):
			}
			continue
		}

		for _, u := range updates {
			cfg.Offset = u.UpdateID + 1
			c.dispatch(ctx, h, u)
		}
	}
}

type pollResult struct {
	updates []tgbotapi.Update
	err     error
}

// poll runs one getUpdates call. The library has no context support, so an
// in-flight long poll is abandoned on cancel and ends at the client timeout.
func (c *Client) poll(ctx context.Context, cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	ch := make(chan pollResult, 1)
	go func() {
		updates, err := c.api.GetUpdates(cfg)
		ch <- pollResult{updates: updates, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("telegram getUpdates: %w", redact(r.err))
		}
		return r.updates, nil
	}
}

func (c *Client) dispatch(ctx context.Context, h Handler, u tgbotapi.Update) {
	if u.Message == nil || u.Message.Chat == nil || u.Message.Text == "" {
		return
	}

	chatID := u.Message.Chat.ID
	if len(c.allowed) > 0 {
		if _, ok := c.allowed[chatID]; !ok {
			c.log.Warn().Ctx(ctx).Int64("chat", chatID).Msg("ignoring message from chat not in allowed_chats")
			return
		}
	}

	h.HandleMessage(ctx, bot.Message{
		ChatID: strconv.FormatInt(chatID, 10),
		User:   displayName(u.Message.From),
		Text:   u.Message.Text,
	})
}

// Send posts r to its chat with sendMessage.
func (c *Client) Send(_ context.Context, r bot.Reply) error {
	chatID, err := strconv.ParseInt(r.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram chat id %q: %w", r.ChatID, err)
	}

	msg := tgbotapi.NewMessage(chatID, r.Text)
	if kb := replyKeyboard(r.Keyboard); kb != nil {
		msg.ReplyMarkup = kb
	}

	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage: %w", redact(err))
	}
	return nil
}
