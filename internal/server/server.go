// Package server exposes the bot over HTTP: a readiness route and the
// webhook that triggers a routing cycle.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/hookbot/internal/bot"
)

// ReadyMessage is the body of the readiness route.
const ReadyMessage = "Server is running! Bot is ready."

const shutdownTimeout = 10 * time.Second

// Cycler runs one fetch-route cycle.
type Cycler interface {
	RunCycle(ctx context.Context) bot.Summary
}

// Options configures a Server.
type Options struct {
	Addr              string
	ReadHeaderTimeout time.Duration
}

// Server serves the readiness and webhook routes.
type Server struct {
	opts   Options
	cycler Cycler
	log    zerolog.Logger
	mux    *http.ServeMux
}

// New creates a Server.
func New(opts Options, cycler Cycler, log zerolog.Logger) *Server {
	s := &Server{
		opts:   opts,
		cycler: cycler,
		log:    log,
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /{$}", s.handleReady)
	s.mux.HandleFunc("POST /webhook", s.handleWebhook)

	return s
}

// Handler returns the server's routes wrapped in the request logger.
func (s *Server) Handler() http.Handler {
	return requestLogger(s.log, s.mux)
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully, letting in-flight cycles finish.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.opts.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ReadyMessage))
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	// Updates are consumed upstream once fetched, so the cycle must not be
	// cut short when the caller disconnects.
	ctx := context.WithoutCancel(r.Context())
	s.cycler.RunCycle(ctx)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
