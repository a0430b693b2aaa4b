package commands

import (
	"context"
	"encoding/json"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/hookbot/internal/printer"
)

type PollCmd struct {
	flags  *Flags
	format string
}

// NewPollCmd creates a new poll command
func NewPollCmd(flags *Flags) *PollCmd {
	return &PollCmd{flags: flags}
}

// Register adds the poll command to the application
func (cmd *PollCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "poll",
		Usage:       "Run one fetch-and-reply cycle",
		UsageText:   "hookbot poll [--format text|json]",
		Description: "Does exactly what one webhook call does and prints the cycle summary.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *PollCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.RequireValidConfig(); err != nil {
		return err
	}

	router, err := newRouter(cmd.flags)
	if err != nil {
		return err
	}

	sum := router.RunCycle(ctx)

	if cmd.format == "json" {
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	p := printer.Ctx(ctx)
	if sum.Fetched == 0 {
		p.Infof("No pending updates")
		return nil
	}

	p.Printf("Fetched %d update(s): %d matched, %d ignored, %d malformed",
		sum.Fetched, sum.Matched, sum.Ignored, sum.Malformed)

	if sum.Failed > 0 {
		p.Warnf("Sent %d, failed %d", sum.Sent, sum.Failed)
		return nil
	}

	p.Successf("Sent %d repl(ies)", sum.Sent)
	return nil
}
