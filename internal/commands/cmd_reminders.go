package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/remindme/internal/bot"
	"github.com/hay-kot/remindme/internal/core/temporal"
	"github.com/hay-kot/remindme/internal/transport/httpapi"
	"github.com/hay-kot/remindme/pkg/iojson"
)

type RemindersCmd struct {
	flags *Flags

	// flags
	server     string
	chatID     string
	jsonOutput bool
}

// NewRemindersCmd creates a new reminders command
func NewRemindersCmd(flags *Flags) *RemindersCmd {
	return &RemindersCmd{flags: flags}
}

// Register adds the reminders command to the application
func (cmd *RemindersCmd) Register(app *cli.Command) *cli.Command {
	shared := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:        "server",
				Usage:       "base URL of a running 'remindme serve' (defaults to server.addr)",
				Sources:     cli.EnvVars("REMINDME_SERVER"),
				Destination: &cmd.server,
			},
			&cli.StringFlag{
				Name:        "chat",
				Usage:       "chat id",
				Required:    true,
				Destination: &cmd.chatID,
			},
		}
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "reminders",
		Usage: "Inspect reminders on a running server",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List the reminders of a chat",
				UsageText: "remindme reminders ls --chat ID [--json]",
				Flags: append(shared(), &cli.BoolFlag{
					Name:        "json",
					Usage:       "output as JSON lines",
					Destination: &cmd.jsonOutput,
				}),
				Action: cmd.runList,
			},
			{
				Name:          "rm",
				Usage:         "Cancel a reminder",
				UsageText:     "remindme reminders rm --chat ID NAME",
				Flags:         shared(),
				ShellComplete: ReminderNameCompleter(cmd),
				Action:        cmd.runRemove,
			},
		},
	})

	return app
}

func (cmd *RemindersCmd) client() *httpapi.Client {
	base := cmd.server
	if base == "" {
		base = "http://" + cmd.flags.Config.Server.Addr
	}
	return httpapi.NewClient(base, nil)
}

func (cmd *RemindersCmd) runList(ctx context.Context, c *cli.Command) error {
	reminders, err := cmd.client().List(ctx, cmd.chatID)
	if err != nil {
		return err
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, r := range reminders {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode reminder: %w", err)
			}
		}
		return nil
	}

	if len(reminders) == 0 {
		fmt.Fprintf(os.Stderr, "No reminders found\n")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tKIND\tFIRES AT\tSTATE")
	for _, r := range reminders {
		state := "pending"
		if r.Fired {
			state = "sent"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, r.Kind, temporal.FormatEventTime(r.FireAt.Local()), state)
	}
	return w.Flush()
}

func (cmd *RemindersCmd) runRemove(ctx context.Context, c *cli.Command) error {
	name := strings.Join(c.Args().Slice(), " ")
	if name == "" {
		return fmt.Errorf("reminder name required. Usage: %s", c.UsageText)
	}

	err := cmd.client().Unset(ctx, cmd.chatID, name)
	if errors.Is(err, bot.ErrNoActiveItem) {
		return fmt.Errorf("no active reminder %q in chat %s", name, cmd.chatID)
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Reminder '%s' unset\n", name)
	return nil
}
