package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mr1hm/battlescape/internal/selection"
	"github.com/mr1hm/battlescape/internal/store"
)

var (
	ErrNotFound = errors.New("session not found")
	// ErrStale is returned by Update when the session has already been
	// validated against a newer snapshot than the one supplied.
	ErrStale = errors.New("snapshot older than session")
)

// Session is one user's explorer. Its state is never shared with other
// sessions.
type Session struct {
	ID string

	mu         sync.Mutex
	state      selection.State
	version    uint64
	lastAccess time.Time
}

func (s *Session) State() selection.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// revalidate must be called with s.mu held.
func (s *Session) revalidate(snap *store.Snapshot) {
	s.state.Revalidate(snap)
	s.version = snap.Version()
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

func (m *Manager) Create(snap *store.Snapshot) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		state:      selection.New(snap),
		version:    snap.Version(),
		lastAccess: m.now(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	slog.Debug("session created", "session_id", s.ID)
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	s.lastAccess = m.now()
	s.mu.Unlock()
	return s, nil
}

// Update applies fn to the session's state and returns the result. The
// state is revalidated against snap first in case a reload raced ahead of
// RevalidateAll. A snap older than the one the session last saw is refused
// with ErrStale and the state is left alone.
func (m *Manager) Update(id string, snap *store.Snapshot, fn func(*selection.State)) (selection.State, error) {
	s, err := m.Get(id)
	if err != nil {
		return selection.State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Version() < s.version {
		return selection.State{}, ErrStale
	}
	s.revalidate(snap)
	fn(&s.state)
	return s.state, nil
}

func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// RevalidateAll re-clamps every session against a newly loaded snapshot.
func (m *Manager) RevalidateAll(snap *store.Snapshot) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.sessions {
		s.mu.Lock()
		if snap.Version() >= s.version {
			s.revalidate(snap)
		}
		s.mu.Unlock()
	}
	slog.Info("sessions revalidated", "count", len(m.sessions), "version", snap.Version())
}

// Expire drops sessions idle for longer than idle and returns how many went.
func (m *Manager) Expire(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		stale := s.lastAccess.Before(cutoff)
		s.mu.Unlock()
		if stale {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
