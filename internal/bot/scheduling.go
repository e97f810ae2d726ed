package bot

import (
	"context"
	"fmt"

	"github.com/hay-kot/remindme/internal/core/chat"
	"github.com/hay-kot/remindme/internal/core/dialogue"
	"github.com/hay-kot/remindme/internal/core/logging"
	"github.com/hay-kot/remindme/internal/core/reminder"
	"github.com/hay-kot/remindme/internal/core/schedule"
	"github.com/hay-kot/remindme/internal/core/temporal"
)

// scheduleEvent arms the notification for ev, replacing any reminder with the
// same name. The date is checked again because time passes while the user
// answers the dialogue.
func (b *Bot) scheduleEvent(ctx context.Context, st *chat.State, ev reminder.Event) error {
	b.evict(ctx, st, ev.Name)

	if !ev.DueAt.After(b.now()) {
		b.log.Error().Ctx(ctx).Str("name", ev.Name).Time("due_at", ev.DueAt).Msg("event date is in the past")
		b.reply(ctx, st.ID, dialogue.ReplyPast)
		return temporal.ErrInThePast
	}

	text := ev.Text()
	h := b.sched.At(ev.DueAt, schedule.Payload{ChatID: st.ID, Name: ev.Name, Text: text}, b.deliver)
	st.Jobs().Put(&chat.Job{Name: ev.Name, Kind: reminder.KindEvent, Text: text, Handle: h})

	b.log.Info().Ctx(ctx).Str("name", ev.Name).Time("due_at", ev.DueAt).Msg("event set")
	b.reply(ctx, st.ID, fmt.Sprintf("Event %s successfully set!", ev.Name))
	return nil
}

// scheduleTimer arms the notification for tm, replacing any reminder with the
// same name.
func (b *Bot) scheduleTimer(ctx context.Context, st *chat.State, tm reminder.Timer) {
	b.evict(ctx, st, tm.Name)

	text := tm.Text()
	h := b.sched.After(tm.Due, schedule.Payload{ChatID: st.ID, Name: tm.Name, Text: text}, b.deliver)
	st.Jobs().Put(&chat.Job{Name: tm.Name, Kind: reminder.KindTimer, Text: text, Handle: h})

	b.log.Info().Ctx(ctx).Str("name", tm.Name).Dur("due", tm.Due).Msg("timer set")
	b.reply(ctx, st.ID, fmt.Sprintf("Timer %s successfully set!", tm.Name))
}

// evict cancels the reminder registered under name, telling the user it is
// being updated.
func (b *Bot) evict(ctx context.Context, st *chat.State, name string) {
	if _, ok := st.Jobs().Remove(name); ok {
		b.log.Debug().Ctx(ctx).Str("name", name).Msg("replacing reminder")
		b.reply(ctx, st.ID, fmt.Sprintf("Updating '%s' entry", name))
	}
}

func (b *Bot) unset(ctx context.Context, st *chat.State, name string) error {
	job, ok := st.Jobs().Remove(name)
	if !ok {
		return ErrNoActiveItem
	}
	b.log.Info().Ctx(ctx).Str("name", name).Bool("fired", job.Fired()).Msg("reminder unset")
	return nil
}

// Unset cancels the named reminder in a chat without replying to it.
func (b *Bot) Unset(ctx context.Context, chatID, name string) error {
	st, ok := b.chats.Lookup(chatID)
	if !ok {
		return ErrNoActiveItem
	}
	if name == "" {
		name = reminder.DefaultTimerName
	}
	return b.unset(logging.WithChatID(ctx, chatID), st, name)
}

// Reminders lists the reminders registered in a chat.
func (b *Bot) Reminders(chatID string) []*chat.Job {
	st, ok := b.chats.Lookup(chatID)
	if !ok {
		return nil
	}
	return st.Jobs().List()
}

// deliver is the callback run by the scheduler when a reminder is due. It only
// reads the captured payload.
func (b *Bot) deliver(ctx context.Context, p schedule.Payload) error {
	if err := b.sender.Send(ctx, Reply{ChatID: p.ChatID, Text: p.Text}); err != nil {
		return fmt.Errorf("deliver %q: %w", p.Name, err)
	}
	return nil
}
