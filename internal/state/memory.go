package state

import (
	"context"
	"errors"
	"sync"

	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

// MemoryStore keeps the state in process memory. It backs tests and
// "run --no-persist", where the state is seeded from the configured store
// but never written back.
type MemoryStore struct {
	mu      sync.Mutex
	st      *domain.NotificationState
	saves   int
	loadErr error
	saveErr error
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithSeed sets the initial state.
func WithSeed(st *domain.NotificationState) MemoryOption {
	return func(m *MemoryStore) {
		if st != nil {
			m.st = st.Clone()
		}
	}
}

// WithLoadError makes every Load fail with err.
func WithLoadError(err error) MemoryOption {
	return func(m *MemoryStore) {
		m.loadErr = err
	}
}

// WithSaveError makes every Save fail with err.
func WithSaveError(err error) MemoryOption {
	return func(m *MemoryStore) {
		m.saveErr = err
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{st: domain.NewNotificationState()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load returns a copy of the held state.
func (m *MemoryStore) Load(_ context.Context) (*domain.NotificationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.st.Clone(), nil
}

// Save replaces the held state with a copy of st. Failed saves are counted
// too.
func (m *MemoryStore) Save(_ context.Context, st *domain.NotificationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	if st == nil {
		return errors.New("saving nil state")
	}
	m.st = st.Clone()
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Snapshot returns a copy of the held state.
func (m *MemoryStore) Snapshot() *domain.NotificationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.Clone()
}
