package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/hookbot/internal/media"
	"github.com/hay-kot/hookbot/internal/printer"
)

type PruneCmd struct {
	flags     *Flags
	olderThan time.Duration
	dryRun    bool
}

// NewPruneCmd creates a new prune command
func NewPruneCmd(flags *Flags) *PruneCmd {
	return &PruneCmd{flags: flags}
}

// Register adds the prune command to the application
func (cmd *PruneCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "prune",
		Usage:     "Remove old downloaded audio files",
		UsageText: "hookbot prune [--older-than 24h] [--dry-run]",
		Description: `Downloaded files are never removed after they are sent. prune deletes
audio files and partial downloads in the download directory that were last
modified before the cutoff.

Use --dry-run to list the files without deleting them.`,
		Action: cmd.run,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:        "older-than",
				Usage:       "minimum file age",
				Value:       24 * time.Hour,
				Destination: &cmd.olderThan,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Aliases:     []string{"n"},
				Usage:       "list files without deleting them",
				Destination: &cmd.dryRun,
			},
		},
	})

	return app
}

func (cmd *PruneCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)
	cfg := cmd.flags.Config.Media

	pruner := media.NewPruner(cfg.Dir, cfg.Codec, component("prune"))

	removed, err := pruner.Prune(cmd.olderThan, cmd.dryRun)
	if err != nil {
		return fmt.Errorf("prune downloads: %w", err)
	}

	if len(removed) == 0 {
		p.Infof("No downloads older than %s", cmd.olderThan)
		return nil
	}

	if cmd.dryRun {
		for _, path := range removed {
			p.Printf("  %s", path)
		}
		p.Infof("Would remove %d file(s)", len(removed))
		return nil
	}

	p.Successf("Pruned %d file(s)", len(removed))

	return nil
}
