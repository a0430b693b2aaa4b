package commands

import (
	"context"
	"encoding/json"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/hookbot/internal/commands/doctor"
	"github.com/hay-kot/hookbot/internal/core/config"
	"github.com/hay-kot/hookbot/internal/printer"
)

type DoctorCmd struct {
	flags  *Flags
	format string
	fix    bool
}

func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your hookbot setup",
		UsageText:   "hookbot doctor [options]",
		Description: "Runs diagnostic checks on configuration, media tools, the wish list and the download directory.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "fix",
				Usage:       "create missing directories",
				Destination: &cmd.fix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	report := doctor.Run(ctx, cmd.checks())

	if cmd.format == "json" {
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	cmd.outputText(ctx, report)

	if code := report.ExitCode(); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

// checks returns the checks relevant to the configured mode.
func (cmd *DoctorCmd) checks() []doctor.Check {
	cfg := cmd.flags.Config

	checks := []doctor.Check{
		doctor.NewConfigCheck(cfg, cmd.flags.ConfigPath),
	}

	switch cfg.Mode {
	case config.ModeAudio:
		tools := []doctor.Tool{
			{Name: "yt-dlp", Path: cfg.Media.ToolPath, Args: []string{"--version"}},
		}
		ffmpeg := "ffmpeg"
		if cfg.Media.FFmpegPath != "" {
			ffmpeg = cfg.Media.FFmpegPath
		}
		tools = append(tools, doctor.Tool{Name: "ffmpeg", Path: ffmpeg, Args: []string{"-version"}})

		checks = append(checks,
			doctor.NewToolsCheck(cmd.flags.Executor, tools...),
			doctor.NewDownloadDirCheck(cfg.Media.Dir, cmd.fix),
		)
	case config.ModeWishes:
		checks = append(checks, doctor.NewWishesCheck(cfg.Wishes.File))
	}

	return checks
}

func (cmd *DoctorCmd) outputText(ctx context.Context, report doctor.Report) {
	p := printer.Ctx(ctx)

	for _, result := range report.Checks {
		p.Section(result.Name)

		for _, item := range result.Items {
			switch item.Status {
			case doctor.StatusPass:
				p.CheckItem(item.Label, item.Detail)
			case doctor.StatusWarn:
				p.WarnItem(item.Label, item.Detail)
			case doctor.StatusFail:
				p.FailItem(item.Label, item.Detail)
			}
		}

		p.Printf("")
	}

	sum := report.Summary
	p.Printf("%s %d passed, %d warnings, %d failed", p.Bold("Summary:"), sum.Passed, sum.Warned, sum.Failed)

	if sum.Fixable > 0 && !cmd.fix {
		p.Infof("%d issue(s) can be fixed with --fix", sum.Fixable)
	}
}
