package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/remindme/internal/core/chat"
	"github.com/hay-kot/remindme/internal/core/dialogue"
	"github.com/hay-kot/remindme/internal/core/oneshot"
	"github.com/hay-kot/remindme/internal/core/reminder"
	"github.com/hay-kot/remindme/internal/core/temporal"
)

const (
	replyUnknown = "Sorry, I didn't understand that command."
	replyStart   = "Hi! I'm organizer helper bot!\nWrite /help to see all available commands."
	replyHelp    = "Currently you can use only:\n" +
		"/new_timer <seconds> [timer_name] [timer_message] - to set timer.\n" +
		"/new_event <date \"" + temporal.DateHint + "\"> <time \"" + temporal.TimeHint + "\"> " +
		"<event_name> [event_loc] [event_msg] - to create a new event.\n" +
		"/event to create a new event step by step.\n" +
		"/timer to create a new timer step by step.\n" +
		"/list to see your reminders.\n" +
		"/unset <name> to unset timer/event."
)

// StartKeyboard is offered with the greeting.
var StartKeyboard = [][]string{
	{"/event", "/timer"},
	{"/cancel", "/help"},
}

type command func(b *Bot, ctx context.Context, st *chat.State, args string)

var commands = map[string]command{
	"start":     (*Bot).cmdStart,
	"help":      (*Bot).cmdHelp,
	"event":     (*Bot).cmdEvent,
	"timer":     (*Bot).cmdTimer,
	"cancel":    (*Bot).cmdCancel,
	"skip":      (*Bot).cmdSkip,
	"new_event": (*Bot).cmdNewEvent,
	"new_timer": (*Bot).cmdNewTimer,
	"unset":     (*Bot).cmdUnset,
	"list":      (*Bot).cmdList,
}

func (b *Bot) runCommand(ctx context.Context, st *chat.State, name, args string) {
	cmd, ok := commands[name]
	if !ok {
		b.log.Debug().Ctx(ctx).Str("command", name).Msg("unknown command")
		b.reply(ctx, st.ID, replyUnknown)
		return
	}
	cmd(b, ctx, st, args)
}

func (b *Bot) cmdStart(ctx context.Context, st *chat.State, _ string) {
	b.send(ctx, Reply{ChatID: st.ID, Text: replyStart, Keyboard: StartKeyboard})
}

func (b *Bot) cmdHelp(ctx context.Context, st *chat.State, _ string) {
	b.reply(ctx, st.ID, replyHelp)
}

func (b *Bot) cmdEvent(ctx context.Context, st *chat.State, _ string) {
	b.openDialogue(ctx, st, dialogue.NewEvent(b.now))
}

func (b *Bot) cmdTimer(ctx context.Context, st *chat.State, _ string) {
	b.openDialogue(ctx, st, dialogue.NewTimer())
}

func (b *Bot) openDialogue(ctx context.Context, st *chat.State, d *dialogue.Dialogue) {
	if prev := st.Dialogue(); prev != nil {
		b.log.Debug().Ctx(ctx).Str("kind", string(prev.Kind())).Stringer("step", prev.Step()).Msg("replacing open dialogue")
	}
	st.StartDialogue(d)
	b.log.Info().Ctx(ctx).Str("kind", string(d.Kind())).Msg("started new entry")
	b.reply(ctx, st.ID, d.Intro())
}

func (b *Bot) cmdCancel(ctx context.Context, st *chat.State, _ string) {
	d := st.EndDialogue()
	if d == nil {
		b.reply(ctx, st.ID, replyUnknown)
		return
	}
	b.log.Info().Ctx(ctx).Str("kind", string(d.Kind())).Msg("canceled new entry")
	b.reply(ctx, st.ID, d.CancelReply())
}

func (b *Bot) cmdSkip(ctx context.Context, st *chat.State, _ string) {
	if st.Dialogue() == nil {
		b.reply(ctx, st.ID, replyUnknown)
		return
	}
	b.advance(ctx, st, dialogue.Input{Skip: true})
}

func (b *Bot) cmdNewEvent(ctx context.Context, st *chat.State, line string) {
	args, err := oneshot.Tokenize(line)
	if err == nil {
		var ev reminder.Event
		ev, err = oneshot.ParseEvent(args, b.now())
		if err == nil {
			_ = b.scheduleEvent(ctx, st, ev)
			return
		}
	}

	b.log.Error().Ctx(ctx).Err(err).Str("args", line).Msg("wrong args for one message event")
	if errors.Is(err, temporal.ErrInThePast) {
		b.reply(ctx, st.ID, dialogue.ReplyPast)
	}
	b.reply(ctx, st.ID, oneshot.EventUsage)
}

func (b *Bot) cmdNewTimer(ctx context.Context, st *chat.State, line string) {
	args, err := oneshot.Tokenize(line)
	if err == nil {
		var tm reminder.Timer
		tm, err = oneshot.ParseTimer(args)
		if err == nil {
			b.scheduleTimer(ctx, st, tm)
			return
		}
	}

	b.log.Error().Ctx(ctx).Err(err).Str("args", line).Msg("wrong args for one message timer")
	if errors.Is(err, temporal.ErrNegative) {
		b.reply(ctx, st.ID, dialogue.ReplyPast)
	}
	b.reply(ctx, st.ID, oneshot.TimerUsage)
}

// cmdUnset cancels the reminder named by the first argument. Names with
// spaces must be quoted.
func (b *Bot) cmdUnset(ctx context.Context, st *chat.State, line string) {
	args, err := oneshot.Tokenize(line)
	if err != nil {
		b.reply(ctx, st.ID, "Usage: /unset [name]")
		return
	}

	name := reminder.DefaultTimerName
	if len(args) > 0 && args[0] != "" {
		name = args[0]
	}

	if err := b.unset(ctx, st, name); err != nil {
		b.reply(ctx, st.ID, fmt.Sprintf("You have no active %s.", jobLabel(name)))
		return
	}
	b.reply(ctx, st.ID, fmt.Sprintf("%s successfully unset!", jobLabel(name)))
}

// jobLabel is how /unset replies refer to a reminder.
func jobLabel(name string) string {
	return name + "_job"
}

func (b *Bot) cmdList(ctx context.Context, st *chat.State, _ string) {
	jobs := st.Jobs().List()
	if len(jobs) == 0 {
		b.reply(ctx, st.ID, "You have no active reminders.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your reminders:")
	for _, j := range jobs {
		fmt.Fprintf(&sb, "\n- %s (%s) at %s", j.Name, j.Kind, temporal.FormatEventTime(j.FireAt()))
		if j.Fired() {
			sb.WriteString(", already sent")
		}
	}
	b.reply(ctx, st.ID, sb.String())
}
