// Package jsonfile provides JSON file-backed stores.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/hay-kot/hookbot/internal/core/wishes"
)

// SelectionStore implements wishes.StateStore using a JSON file, so the
// daily selection survives restarts and is shared by processes on one host.
type SelectionStore struct {
	path string
	mu   sync.RWMutex
}

// NewSelectionStore creates a new JSON file selection store at the given path.
func NewSelectionStore(path string) *SelectionStore {
	return &SelectionStore{path: path}
}

// lockPath returns the path to the lock file.
func (s *SelectionStore) lockPath() string {
	return s.path + ".lock"
}

// withFileLock acquires a file lock, executes fn, then releases the lock.
func (s *SelectionStore) withFileLock(lockType int, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := syscall.Flock(int(f.Fd()), lockType); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN) //nolint:errcheck

	return fn()
}

// Load returns the stored state, or the zero State if nothing was saved yet.
func (s *SelectionStore) Load(ctx context.Context) (wishes.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var state wishes.State
	err := s.withFileLock(syscall.LOCK_SH, func() error {
		var err error
		state, err = s.load()
		return err
	})
	return state, err
}

// Save replaces the stored state.
func (s *SelectionStore) Save(ctx context.Context, state wishes.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withFileLock(syscall.LOCK_EX, func() error {
		return s.save(state)
	})
}

// Update reads, transforms and writes the state under one exclusive file
// lock, so concurrent updates from other stores on the same path, including
// other processes, are serialized.
func (s *SelectionStore) Update(ctx context.Context, fn wishes.UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withFileLock(syscall.LOCK_EX, func() error {
		state, err := s.load()
		if err != nil {
			return err
		}

		next, err := fn(state)
		if err != nil {
			return err
		}

		return s.save(next)
	})
}

// load reads the state file from disk.
// Returns the zero state if the file doesn't exist or is empty.
func (s *SelectionStore) load() (wishes.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return wishes.State{}, nil
		}
		return wishes.State{}, err
	}

	if len(data) == 0 {
		return wishes.State{}, nil
	}

	var state wishes.State
	if err := json.Unmarshal(data, &state); err != nil {
		return wishes.State{}, fmt.Errorf("parse %s: %w", s.path, err)
	}

	return state, nil
}

// save writes the state file to disk atomically.
func (s *SelectionStore) save(state wishes.State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp) // best effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
