// Package bot routes platform updates to a reply strategy.
package bot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hay-kot/hookbot/internal/core/messaging"
)

// Outcome is the result of routing a single update.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeMalformed
	OutcomeSent
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeSent:
		return "sent"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Summary counts what happened during one cycle. Matched is Sent + Failed.
type Summary struct {
	ID        string        `json:"id"`
	Fetched   int           `json:"fetched"`
	Matched   int           `json:"matched"`
	Ignored   int           `json:"ignored"`
	Malformed int           `json:"malformed"`
	Sent      int           `json:"sent"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

func (s *Summary) add(o Outcome) {
	switch o {
	case OutcomeIgnored:
		s.Ignored++
	case OutcomeMalformed:
		s.Malformed++
	case OutcomeSent:
		s.Matched++
		s.Sent++
	case OutcomeFailed:
		s.Matched++
		s.Failed++
	}
}

// Router polls for updates and replies to the ones that contain a trigger.
type Router struct {
	client   messaging.Client
	strategy Strategy
	log      zerolog.Logger
}

// NewRouter creates a Router.
func NewRouter(client messaging.Client, strategy Strategy, log zerolog.Logger) *Router {
	return &Router{
		client:   client,
		strategy: strategy,
		log:      log,
	}
}

// RunCycle fetches pending updates once and routes each in order. A failed
// fetch is logged and treated as no updates. Failures of individual updates
// are counted and never stop the cycle.
func (r *Router) RunCycle(ctx context.Context) Summary {
	start := time.Now()
	sum := Summary{ID: uuid.NewString()}
	log := r.log.With().Str("cycle_id", sum.ID).Logger()

	updates, err := r.client.GetUpdates(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch updates")
		updates = nil
	}
	sum.Fetched = len(updates)

	for _, u := range updates {
		sum.add(r.route(ctx, log, u))
	}

	sum.Duration = time.Since(start)

	log.Info().
		Str("strategy", r.strategy.Name()).
		Int("fetched", sum.Fetched).
		Int("matched", sum.Matched).
		Int("ignored", sum.Ignored).
		Int("malformed", sum.Malformed).
		Int("sent", sum.Sent).
		Int("failed", sum.Failed).
		Dur("duration", sum.Duration).
		Msg("cycle complete")

	return sum
}

// RouteOne handles a single update.
func (r *Router) RouteOne(ctx context.Context, u messaging.Update) Outcome {
	return r.route(ctx, r.log, u)
}

func (r *Router) route(ctx context.Context, log zerolog.Logger, u messaging.Update) Outcome {
	log = log.With().Str("chat_id", u.ChatID).Logger()

	text, err := u.Decode()
	if err != nil {
		log.Warn().Err(err).Msg("skipping update with undecodable text")
		return OutcomeMalformed
	}

	if !Matches(text) {
		log.Info().Str("text", text).Msg("no trigger in message")
		return OutcomeIgnored
	}

	out, err := r.strategy.Reply(ctx, u.ChatID, text)
	if err != nil {
		log.Error().Err(err).Msg("failed to build reply")
		return OutcomeFailed
	}

	if err := r.client.SendMessage(ctx, out); err != nil {
		// The client logs the upstream status itself.
		return OutcomeFailed
	}

	return OutcomeSent
}
