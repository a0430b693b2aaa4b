package wishes

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MaxPerDraw is the largest number of wishes returned by one selection.
const MaxPerDraw = 3

// SelectorOptions configures a Selector. Zero values use the wall clock, the
// local time zone and a randomly seeded source.
type SelectorOptions struct {
	Now      func() time.Time
	Location *time.Location
	Rand     *rand.Rand
}

// Selector draws wishes with a two-state daily policy.
//
// The first selection of a calendar day draws between 1 and MaxPerDraw
// wishes. Every later selection on the same day draws exactly MaxPerDraw.
// Both draws sample the full list without replacement. The recorded items
// are overwritten on every draw but are not used to exclude repeats.
type Selector struct {
	list  List
	store StateStore
	log   zerolog.Logger

	now func() time.Time
	loc *time.Location

	// mu guards rnd. Atomicity of the state change is up to the store.
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSelector creates a Selector over list backed by store.
func NewSelector(list List, store StateStore, log zerolog.Logger, opts SelectorOptions) *Selector {
	s := &Selector{
		list:  list,
		store: store,
		log:   log,
		now:   opts.Now,
		loc:   opts.Location,
		rnd:   opts.Rand,
	}

	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return s
}

// Select returns between 1 and MaxPerDraw distinct wishes and records the
// selection for today.
func (s *Selector) Select(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now().In(s.loc).Format(time.DateOnly)

	var (
		items []string
		fresh bool
	)

	err := s.store.Update(ctx, func(state State) (State, error) {
		fresh = !state.SelectedOn(today)

		n := MaxPerDraw
		if fresh {
			n = 1 + s.rnd.IntN(MaxPerDraw)
		}

		var err error
		items, err = sample(s.rnd, s.list.items, n)
		if err != nil {
			return state, err
		}

		return State{Date: today, Items: items}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update selection state: %w", err)
	}

	s.log.Debug().
		Str("date", today).
		Bool("fresh", fresh).
		Int("count", len(items)).
		Msg("wishes selected")

	return items, nil
}

// sample draws n distinct elements of items using a partial Fisher-Yates
// shuffle on a copy.
func sample(rnd *rand.Rand, items []string, n int) ([]string, error) {
	if n > len(items) {
		return nil, fmt.Errorf("%w: cannot draw %d from %d", ErrTooFewWishes, n, len(items))
	}

	pool := append([]string(nil), items...)
	for i := 0; i < n; i++ {
		j := i + rnd.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:n], nil
}
