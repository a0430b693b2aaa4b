package wishes

import (
	"context"
	"sync"
)

// State records the last selection. Date is a calendar day formatted as
// time.DateOnly in the selector's location; the zero State means nothing has
// been selected yet.
type State struct {
	Date  string   `json:"date"`
	Items []string `json:"items"`
}

// SelectedOn reports whether a selection was already made on day.
func (s State) SelectedOn(day string) bool {
	return s.Date != "" && s.Date == day
}

// UpdateFunc receives the stored state and returns the state to store. An
// error leaves the stored state unchanged and is returned by Update.
type UpdateFunc func(State) (State, error)

// StateStore persists the selection state between requests. Update must be
// atomic: no other Update on the same store, in this or another process, may
// observe the state between the read and the write.
type StateStore interface {
	Load(ctx context.Context) (State, error)
	Update(ctx context.Context, fn UpdateFunc) error
}

// MemoryStore keeps the state for the life of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	state State
}

// NewMemoryStore creates an empty in-memory state store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(_ context.Context) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := m.state
	st.Items = append([]string(nil), m.state.Items...)
	return st, nil
}

func (m *MemoryStore) Save(_ context.Context, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state.Items = append([]string(nil), state.Items...)
	m.state = state
	return nil
}

func (m *MemoryStore) Update(_ context.Context, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.state
	cur.Items = append([]string(nil), m.state.Items...)

	next, err := fn(cur)
	if err != nil {
		return err
	}

	next.Items = append([]string(nil), next.Items...)
	m.state = next
	return nil
}
