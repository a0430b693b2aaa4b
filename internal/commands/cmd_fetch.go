package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/hookbot/internal/media"
	"github.com/hay-kot/hookbot/internal/printer"
)

type FetchCmd struct {
	flags *Flags
}

// NewFetchCmd creates a new fetch command
func NewFetchCmd(flags *Flags) *FetchCmd {
	return &FetchCmd{flags: flags}
}

// Register adds the fetch command to the application
func (cmd *FetchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "fetch",
		Usage:       "Download the audio of a video link",
		UsageText:   "hookbot fetch <url>",
		Description: "Runs the media fetcher locally with the configured settings and prints the resulting file path.",
		Action:      cmd.run,
	})

	return app
}

func (cmd *FetchCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.RequireValidConfig(); err != nil {
		return err
	}

	url := c.Args().First()
	if url == "" {
		return fmt.Errorf("missing url. Usage: %s", c.UsageText)
	}

	p := printer.Ctx(ctx)

	path, err := newFetcher(cmd.flags).Fetch(ctx, url)
	if err != nil {
		var fe *media.FetchError
		if errors.As(err, &fe) && fe.Output != "" {
			p.Infof("%s", fe.Output)
		}
		return err
	}

	p.Success("Downloaded", path)
	return nil
}
