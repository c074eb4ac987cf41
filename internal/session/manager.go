package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-adventure/internal/storage"
)

var (
	// ErrNotFound is returned for a session id that no store knows.
	ErrNotFound = errors.New("session not found")
	// ErrTurnInFlight is returned when a second turn is submitted for a
	// session that already has one in progress. Turns on the same session
	// never interleave.
	ErrTurnInFlight = errors.New("a turn is already in progress for this session")
)

const defaultIdleTimeout = 30 * time.Minute

type entry struct {
	state    *State
	snapshot *State // state as of the last completed turn, for readers
	inflight bool
	dirty    bool
}

// Manager owns the live session cache, per-session turn serialization, and
// write-back to the persistence store. Different sessions proceed fully in
// parallel; the lock below only guards the bookkeeping maps, never a turn.
type Manager struct {
	store storage.Storer[*State]

	mu      sync.Mutex
	entries map[string]*entry

	idleTimeout time.Duration
}

type ManagerOpt func(*Manager)

// WithIdleTimeout sets how long a session may sit untouched before the
// tick loop writes it back and drops it from the cache.
func WithIdleTimeout(d time.Duration) ManagerOpt {
	return func(m *Manager) {
		m.idleTimeout = d
	}
}

func NewManager(store storage.Storer[*State], opts ...ManagerOpt) *Manager {
	m := &Manager{
		store:       store,
		entries:     map[string]*entry{},
		idleTimeout: defaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create allocates a new session for the given world and persists it.
func (m *Manager) Create(worldID, start string) (*State, error) {
	st := New(uuid.NewString(), worldID, start)

	if err := m.store.Save(st.ID, st); err != nil {
		return nil, fmt.Errorf("persisting new session: %w", err)
	}

	m.mu.Lock()
	m.entries[st.ID] = &entry{state: st, snapshot: st.Clone()}
	m.mu.Unlock()

	return st, nil
}

// Acquire claims the session for one turn. It returns the live state and a
// release func that must be called when the turn is done. A second Acquire
// before release fails with ErrTurnInFlight rather than interleaving.
func (m *Manager) Acquire(id string) (*State, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	if e.inflight {
		return nil, nil, ErrTurnInFlight
	}
	e.inflight = true

	release := func() {
		m.mu.Lock()
		e.inflight = false
		e.dirty = true
		e.snapshot = e.state.Clone()
		m.mu.Unlock()
	}
	return e.state, release, nil
}

// Peek returns a copy of the session state for read-only callers. It reads
// the snapshot refreshed at each turn's release, never the live state, so a
// concurrent in-flight turn is invisible: readers see the last completed
// turn, half-applied mutations never leak.
func (m *Manager) Peek(id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.snapshot.Clone(), nil
}

// lookup finds a cached entry or faults one in from the store.
// Callers hold m.mu.
func (m *Manager) lookup(id string) (*entry, error) {
	if e, ok := m.entries[id]; ok {
		return e, nil
	}

	st := m.store.Get(id)
	if st == nil {
		return nil, ErrNotFound
	}
	e := &entry{state: st, snapshot: st.Clone()}
	m.entries[id] = e
	return e, nil
}

// Tick writes back dirty sessions and evicts idle ones. It is run
// periodically by the service driver.
func (m *Manager) Tick(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, e := range m.entries {
		if e.inflight {
			continue
		}
		if e.dirty {
			if err := m.store.Save(id, e.state); err != nil {
				return fmt.Errorf("saving session %s: %w", id, err)
			}
			e.dirty = false
		}
		if now.Sub(e.state.LastActive) > m.idleTimeout {
			slog.DebugContext(ctx, "evicting idle session", "session", id)
			delete(m.entries, id)
		}
	}

	return nil
}
