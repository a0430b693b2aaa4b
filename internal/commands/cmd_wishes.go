package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/hookbot/internal/core/wishes"
	"github.com/hay-kot/hookbot/internal/printer"
)

type WishesCmd struct {
	flags *Flags
	count int
}

// NewWishesCmd creates a new wishes command
func NewWishesCmd(flags *Flags) *WishesCmd {
	return &WishesCmd{flags: flags}
}

// Register adds the wishes command to the application
func (cmd *WishesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "wishes",
		Usage:     "Preview wish selections",
		UsageText: "hookbot wishes [--count n]",
		Description: `Draws n selections from the configured wish list, as n consecutive
triggers on the same day would.

Selection state is kept in memory, so a configured state file is not
modified.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "count",
				Aliases:     []string{"n"},
				Usage:       "number of selections to draw",
				Value:       2,
				Destination: &cmd.count,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *WishesCmd) run(ctx context.Context, _ *cli.Command) error {
	if cmd.flags.Config.Wishes.File == "" {
		return fmt.Errorf("no wish list configured (set wishes.file)")
	}

	list, err := wishes.LoadFile(cmd.flags.Config.Wishes.File)
	if err != nil {
		return fmt.Errorf("load wish list: %w", err)
	}

	loc, err := cmd.flags.Config.Location()
	if err != nil {
		return fmt.Errorf("load time zone: %w", err)
	}

	sel := wishes.NewSelector(list, wishes.NewMemoryStore(), component("wishes"), wishes.SelectorOptions{Location: loc})

	p := printer.Ctx(ctx)
	p.Infof("%d wishes loaded from %s", list.Len(), cmd.flags.Config.Wishes.File)

	for i := range cmd.count {
		items, err := sel.Select(ctx)
		if err != nil {
			return fmt.Errorf("select wishes: %w", err)
		}

		p.Section(fmt.Sprintf("Selection %d (%d)", i+1, len(items)))
		for _, item := range items {
			p.Printf("  %s", item)
		}
	}

	return nil
}
