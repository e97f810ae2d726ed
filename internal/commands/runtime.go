package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hay-kot/remindme/internal/bot"
	"github.com/hay-kot/remindme/internal/core/chat"
	"github.com/hay-kot/remindme/internal/core/logging"
	"github.com/hay-kot/remindme/internal/core/schedule"
)

// newBot wires a bot replying through sender. Reminders armed on the returned
// runtime are dropped once ctx is cancelled; call Wait before exiting so an
// in-flight delivery can finish.
func newBot(ctx context.Context, sender bot.Sender) (*bot.Bot, *schedule.Runtime) {
	rt := schedule.NewRuntime(ctx, logging.Component("scheduler"))
	b := bot.New(sender, rt, chat.NewRegistry(), logging.Component("bot"))
	return b, rt
}

// signalContext is cancelled on interrupt or termination.
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
