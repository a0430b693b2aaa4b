package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/hookbot/internal/printer"
)

type ConfigCmd struct {
	flags *Flags
}

// NewConfigCmd creates a new config command.
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds the config command to the application.
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "show",
				Usage:       "Print the effective configuration",
				UsageText:   "hookbot config show",
				Description: "Prints the configuration after defaults, the config file and flags are applied. The API key is never printed.",
				Action:      cmd.run,
			},
		},
	})

	return app
}

func (cmd *ConfigCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	enc := yaml.NewEncoder(c.Root().Writer)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	p := printer.Ctx(ctx)
	for _, warn := range cfg.Warnings() {
		msg := warn.Message
		if warn.Item != "" {
			msg = warn.Item + ": " + msg
		}
		p.Warnf("%s: %s", warn.Category, msg)
	}

	return nil
}
