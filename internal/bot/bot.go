// Package bot implements the reminder bot: command routing, the guided
// dialogues and scheduling of event and timer notifications. It is transport
// agnostic; transports feed it Messages and deliver its Replies.
package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/remindme/internal/core/chat"
	"github.com/hay-kot/remindme/internal/core/dialogue"
	"github.com/hay-kot/remindme/internal/core/logging"
	"github.com/hay-kot/remindme/internal/core/schedule"
)

// ErrNoActiveItem is returned when unsetting a reminder that does not exist.
var ErrNoActiveItem = errors.New("no active reminder")

// Message is an inbound chat message.
type Message struct {
	ChatID string
	User   string
	Text   string
}

// Reply is an outbound chat message. Keyboard is an optional set of quick
// reply buttons, one slice per row; transports that can not show buttons
// ignore it.
type Reply struct {
	ChatID   string
	Text     string
	Keyboard [][]string
}

// Sender delivers replies and notifications to a chat.
type Sender interface {
	Send(ctx context.Context, r Reply) error
}

// Bot reacts to chat messages. It is safe for concurrent use; messages for
// the same chat are handled one at a time.
type Bot struct {
	chats  *chat.Registry
	sched  schedule.Scheduler
	sender Sender
	now    func() time.Time
	log    zerolog.Logger
}

// Option configures a Bot.
type Option func(*Bot)

// WithClock replaces time.Now, used to validate event dates.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) { b.now = now }
}

// New creates a bot replying through sender and arming reminders on sched.
func New(sender Sender, sched schedule.Scheduler, chats *chat.Registry, log zerolog.Logger, opts ...Option) *Bot {
	b := &Bot{
		chats:  chats,
		sched:  sched,
		sender: sender,
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Chats exposes the chat registry, used by transports to end chat sessions.
func (b *Bot) Chats() *chat.Registry { return b.chats }

// EndChat drops a chat session with its open dialogue and cancels its
// pending reminders.
func (b *Bot) EndChat(ctx context.Context, chatID string) {
	n := b.chats.End(chatID)
	b.log.Info().Ctx(logging.WithChatID(ctx, chatID)).Int("cancelled", n).Msg("chat ended")
}

// HandleMessage processes one inbound message. Commands start with a slash;
// any other text is fed to the open dialogue, if there is one.
func (b *Bot) HandleMessage(ctx context.Context, msg Message) {
	ctx = logging.WithChatID(ctx, msg.ChatID)
	if msg.User != "" {
		ctx = logging.WithUser(ctx, msg.User)
	}

	st := b.chats.Acquire(msg.ChatID)
	defer st.Release()

	if name, args, ok := parseCommand(msg.Text); ok {
		b.runCommand(ctx, st, name, args)
		return
	}

	if st.Dialogue() == nil {
		b.log.Debug().Ctx(ctx).Msg("ignoring text outside of a dialogue")
		return
	}

	b.advance(ctx, st, dialogue.Input{Text: msg.Text})
}

// advance feeds one turn to the open dialogue and schedules the draft once
// the dialogue completes.
func (b *Bot) advance(ctx context.Context, st *chat.State, in dialogue.Input) {
	d := st.Dialogue()

	out, err := d.Advance(in)
	if errors.Is(err, dialogue.ErrNotSkippable) {
		b.reply(ctx, st.ID, replyUnknown)
		return
	}
	if err != nil {
		b.log.Error().Ctx(ctx).Err(err).Stringer("step", d.Step()).Msg("dialogue failed")
		st.EndDialogue()
		return
	}

	b.log.Debug().Ctx(ctx).Stringer("step", d.Step()).Str("kind", string(d.Kind())).Msg("dialogue advanced")

	for _, line := range out.Replies {
		b.reply(ctx, st.ID, line)
	}
	if !out.Done {
		return
	}

	st.EndDialogue()

	if ev, ok := d.Event(); ok {
		_ = b.scheduleEvent(ctx, st, ev)
		return
	}
	if tm, ok := d.Timer(); ok {
		b.scheduleTimer(ctx, st, tm)
	}
}

func (b *Bot) reply(ctx context.Context, chatID, text string) {
	b.send(ctx, Reply{ChatID: chatID, Text: text})
}

func (b *Bot) send(ctx context.Context, r Reply) {
	if err := b.sender.Send(ctx, r); err != nil {
		b.log.Warn().Ctx(ctx).Err(err).Msg("failed to send reply")
	}
}

// parseCommand splits "/name@bot rest of line" into name and the raw argument
// string.
func parseCommand(text string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, rest, _ := strings.Cut(text, " ")
	if i := strings.IndexAny(head, "\n\t"); i >= 0 {
		rest = head[i+1:] + " " + rest
		head = head[:i]
	}

	name = strings.TrimPrefix(head, "/")
	name, _, _ = strings.Cut(name, "@")
	return name, strings.TrimSpace(rest), true
}
