package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// ReminderNameCompleter returns a ShellCompleteFunc that suggests the names of
// the reminders of the chat given with --chat.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func ReminderNameCompleter(rc *RemindersCmd) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if rc.chatID == "" {
			return
		}

		reminders, err := rc.client().List(ctx, rc.chatID)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, r := range reminders {
			if r.Fired {
				continue
			}
			_, _ = fmt.Fprintln(w, r.Name)
		}
	}
}
