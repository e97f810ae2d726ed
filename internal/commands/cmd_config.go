package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/remindme/pkg/iojson"
)

type ConfigCmd struct {
	flags  *Flags
	format string
}

// NewConfigCmd creates a new config command.
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds the config commands to the application.
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "remindme config validate [options]",
				Description: "Validates the configuration file, checking the listen address, origin patterns, the Telegram API URL and the console theme.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.runValidate,
			},
			{
				Name:        "show",
				Usage:       "Print the effective configuration",
				UsageText:   "remindme config show",
				Description: "Prints the configuration after defaults are applied. The Telegram token is masked.",
				Action:      cmd.runShow,
			},
		},
	})

	return app
}

type validationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cmd *ConfigCmd) runValidate(_ context.Context, c *cli.Command) error {
	issues, err := validationIssues(cmd.flags.Config.ValidateDeep())
	if err != nil {
		return err
	}

	out := c.Root().Writer

	if cmd.format == "json" {
		if err := iojson.WriteWith(out, os.Stderr, struct {
			Valid  bool              `json:"valid"`
			Path   string            `json:"path"`
			Errors []validationIssue `json:"errors,omitempty"`
		}{
			Valid:  len(issues) == 0,
			Path:   cmd.flags.ConfigPath,
			Errors: issues,
		}); err != nil {
			return err
		}
	} else {
		for _, issue := range issues {
			_, _ = fmt.Fprintf(out, "✗ %s: %s\n", issue.Field, issue.Message)
		}
		if len(issues) == 0 {
			_, _ = fmt.Fprintf(out, "✓ Configuration is valid (%s)\n", cmd.flags.ConfigPath)
		} else {
			_, _ = fmt.Fprintf(out, "\n%d error(s) found\n", len(issues))
		}
	}

	if len(issues) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// validationIssues flattens field errors. Other errors are returned as is.
func validationIssues(err error) ([]validationIssue, error) {
	if err == nil {
		return nil, nil
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}

	issues := make([]validationIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, validationIssue{Field: fe.Field, Message: fe.Err.Error()})
	}
	return issues, nil
}

func (cmd *ConfigCmd) runShow(_ context.Context, c *cli.Command) error {
	cfg := *cmd.flags.Config
	if cfg.Telegram.Token != "" {
		cfg.Telegram.Token = "********"
	}

	enc := yaml.NewEncoder(c.Root().Writer)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
