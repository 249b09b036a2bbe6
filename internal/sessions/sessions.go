package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/skalyan/tabdash/config"
	"github.com/skalyan/tabdash/internal/dataset"
)

// Session owns one uploaded dataset and the user's last filter state,
// paired with metadata for TTL eviction. The dataset is replaced wholesale
// on re-upload and never partially mutated.
type Session struct {
	ID        string
	Filename  string
	Data      *dataset.Dataset
	Filters   dataset.FilterState
	LoadedAt  time.Time
	ExpiresAt time.Time
	mu        sync.RWMutex
}

// Name returns the session's current upload filename. Replace rewrites the
// filename under the session lock, so readers must go through this accessor.
func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Filename
}

// Gate coordinates capacity for active sessions (backed by runtime.Controller).
type Gate interface {
	AcquireSession(ctx context.Context) error
	ReleaseSession()
}

// ErrSessionNotFound indicates an unknown or expired session ID.
var ErrSessionNotFound = errors.New("sessions: session not found")

// Manager provides lifecycle hooks for creating and evicting sessions and a
// TTL-bearing session cache.
type Manager struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	ttl          time.Duration
	cleanupEvery time.Duration
	clock        func() time.Time
	gate         Gate
	onEvict      func(id string)
	stopCh       chan struct{}
	cleanupWG    sync.WaitGroup
}

// NewManager constructs a lifecycle manager with a TTL-bearing session cache.
// Pass ttl or cleanupEvery <= 0 to use defaults from config.
// Gate can be nil for tests; clock defaults to time.Now when nil.
func NewManager(ttl, cleanupEvery time.Duration, gate Gate, clock func() time.Time) *Manager {
	if ttl <= 0 {
		ttl = config.DefaultSessionIdleTTL
	}
	if cleanupEvery <= 0 {
		cleanupEvery = config.DefaultSessionCleanupPeriod
	}
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		sessions:     make(map[string]*Session),
		ttl:          ttl,
		cleanupEvery: cleanupEvery,
		clock:        clock,
		gate:         gate,
		stopCh:       make(chan struct{}),
	}
}

// SetEvictHook registers fn to run after an idle session is evicted.
// Call before Start; the hook runs on the cleanup goroutine.
func (m *Manager) SetEvictHook(fn func(id string)) {
	m.onEvict = fn
}

// Start launches periodic eviction of expired sessions.
func (m *Manager) Start() {
	m.cleanupWG.Add(1)
	ticker := time.NewTicker(m.cleanupEvery)
	go func() {
		defer m.cleanupWG.Done()
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.EvictExpired()
			}
		}
	}()
}

// Close stops background cleanup and drops all sessions.
func (m *Manager) Close(ctx context.Context) error {
	close(m.stopCh)
	done := make(chan struct{})
	go func() { m.cleanupWG.Wait(); close(done) }()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.sessions {
		delete(m.sessions, id)
		if m.gate != nil {
			m.gate.ReleaseSession()
		}
	}
	return nil
}

// Create registers a new session owning ds and returns its ID. The manager
// enforces session capacity via the gate when provided.
func (m *Manager) Create(ctx context.Context, ds *dataset.Dataset, filename string) (string, error) {
	if ds == nil {
		return "", errors.New("sessions: nil dataset")
	}
	if err := m.acquire(ctx); err != nil {
		return "", err
	}

	now := m.clock()
	s := &Session{
		ID:        uuid.NewString(),
		Filename:  filename,
		Data:      ds,
		Filters:   dataset.FilterState{},
		LoadedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s.ID, nil
}

// Get returns the session when present and refreshes its TTL.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	// Refresh TTL on access (idle timeout semantics)
	now := m.clock()
	s.mu.Lock()
	s.ExpiresAt = now.Add(m.ttl)
	s.mu.Unlock()
	return s, true
}

// WithRead obtains a shared read lock on the session and executes fn with
// the dataset and a snapshot of the filter state.
func (m *Manager) WithRead(id string, fn func(ds *dataset.Dataset, fs dataset.FilterState) error) error {
	s, ok := m.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.Data, s.Filters)
}

// Replace swaps the session's dataset wholesale and resets its filters.
func (m *Manager) Replace(id string, ds *dataset.Dataset, filename string) error {
	if ds == nil {
		return errors.New("sessions: nil dataset")
	}
	s, ok := m.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Data = ds
	s.Filename = filename
	s.Filters = dataset.FilterState{}
	s.LoadedAt = m.clock()
	return nil
}

// SetFilters stores the session's current filter state.
func (m *Manager) SetFilters(id string, fs dataset.FilterState) error {
	s, ok := m.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if fs == nil {
		fs = dataset.FilterState{}
	}
	s.Filters = fs
	return nil
}

// Delete removes a session by ID, releasing capacity via the gate.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	m.release()
	return nil
}

// EvictExpired scans for expired sessions and drops them.
func (m *Manager) EvictExpired() {
	now := m.clock()
	var expired []string

	m.mu.RLock()
	for id, s := range m.sessions {
		s.mu.RLock()
		isExpired := now.After(s.ExpiresAt)
		s.mu.RUnlock()
		if isExpired {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		m.mu.Lock()
		_, ok := m.sessions[id]
		if ok {
			delete(m.sessions, id)
		}
		m.mu.Unlock()
		if !ok {
			// Lost a race with Delete; capacity was already released.
			continue
		}
		m.release()
		if m.onEvict != nil {
			m.onEvict(id)
		}
	}
}

// Count returns the current number of cached sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) acquire(ctx context.Context) error {
	if m.gate == nil {
		return nil
	}
	return m.gate.AcquireSession(ctx)
}

func (m *Manager) release() {
	if m.gate == nil {
		return
	}
	m.gate.ReleaseSession()
}
