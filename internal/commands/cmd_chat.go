package commands

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/remindme/internal/transport/console"
)

type ChatCmd struct {
	flags *Flags

	// flags
	user string
}

// NewChatCmd creates a new chat command
func NewChatCmd(flags *Flags) *ChatCmd {
	return &ChatCmd{flags: flags}
}

// Register adds the chat command to the application
func (cmd *ChatCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "chat",
		Usage:     "Chat with the bot in the terminal",
		UsageText: "remindme chat [--user NAME]",
		Description: `Runs a single chat on stdin and stdout. Reminders are printed when they fire
and are discarded when the chat ends.

Logs go to stderr; use --log-file to keep them out of the conversation.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "user",
				Usage:       "display name (overrides console.user)",
				Destination: &cmd.user,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ChatCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	user := cfg.Console.User
	if cmd.user != "" {
		user = cmd.user
	}

	ctx, stop := signalContext(ctx)
	defer stop()

	con := console.New(os.Stdin, c.Root().Writer, console.Options{
		User:  user,
		Color: console.ColorEnabled(cfg.Console.Color, os.Stdout),
		Theme: cfg.Console.Theme,
	})
	b, rt := newBot(ctx, con)

	err := con.Run(ctx, b)
	stop()
	rt.Wait()
	return err
}
