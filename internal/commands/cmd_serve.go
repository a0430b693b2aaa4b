package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/hookbot/internal/server"
)

type ServeCmd struct {
	flags *Flags
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the webhook server",
		UsageText: "hookbot serve",
		Description: `Starts the HTTP server.

  GET  /         readiness check
  POST /webhook  fetch pending updates and reply to the ones with a video link

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Action: cmd.Run,
	})

	return app
}

// Run starts the server. It is also the application's default action.
func (cmd *ServeCmd) Run(ctx context.Context, _ *cli.Command) error {
	if err := cmd.flags.RequireValidConfig(); err != nil {
		return err
	}

	router, err := newRouter(cmd.flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Addr:              cmd.flags.Config.Addr(),
		ReadHeaderTimeout: cmd.flags.Config.Server.ReadHeaderTimeout,
	}, router, component("server"))

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	return nil
}
