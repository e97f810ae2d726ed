package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/remindme/internal/core/logging"
	"github.com/hay-kot/remindme/internal/transport/telegram"
)

type TelegramCmd struct {
	flags *Flags

	// flags
	token string
}

// NewTelegramCmd creates a new telegram command
func NewTelegramCmd(flags *Flags) *TelegramCmd {
	return &TelegramCmd{flags: flags}
}

// Register adds the telegram command to the application
func (cmd *TelegramCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "telegram",
		Usage:     "Run the bot on Telegram",
		UsageText: "remindme telegram [--token TOKEN]",
		Description: `Long polls the Telegram Bot API and answers every chat the bot is added to,
or only the chats listed in telegram.allowed_chats.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "token",
				Usage:       "bot token (overrides telegram.token)",
				Sources:     cli.EnvVars("REMINDME_TELEGRAM_TOKEN"),
				Destination: &cmd.token,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *TelegramCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := *cmd.flags.Config
	if cmd.token != "" {
		cfg.Telegram.Token = cmd.token
	}
	if err := cfg.RequireTelegramToken(); err != nil {
		return err
	}

	ctx, stop := signalContext(ctx)
	defer stop()

	client, err := telegram.New(logging.Component("telegram"), telegram.Options{
		APIURL:       cfg.Telegram.APIURL,
		Token:        cfg.Telegram.Token,
		PollTimeout:  cfg.Telegram.PollTimeout,
		RetryDelay:   cfg.Telegram.RetryDelay,
		AllowedChats: cfg.Telegram.AllowedChats,
	})
	if err != nil {
		return err
	}
	b, rt := newBot(ctx, client)

	err = client.Run(ctx, b)
	stop()
	rt.Wait()

	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}
