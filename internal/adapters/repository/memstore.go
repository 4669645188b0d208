package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/rehearse/internal/domain/session"
	"github.com/okian/rehearse/pkg/metrics"
)

// MemoryStore implements Store with a guarded map.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*session.Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (m *MemoryStore) Put(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	if _, ok := m.sessions[s.ID()]; ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrExists, s.ID())
	}
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	m.observe(ctx)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	m.observe(ctx)
}

func (m *MemoryStore) EvictFinished(ctx context.Context, ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)
	m.mu.Lock()
	evicted := 0
	for id, s := range m.sessions {
		if s.Finished() && s.EndedAt().Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	m.mu.Unlock()

	if evicted > 0 {
		metrics.RecordSessionsEvicted(evicted)
	}
	m.observe(ctx)
	return evicted
}

func (m *MemoryStore) Count(_ context.Context) (total, active int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if !s.Finished() {
			active++
		}
	}
	return len(m.sessions), active
}

func (m *MemoryStore) observe(ctx context.Context) {
	_, active := m.Count(ctx)
	metrics.UpdateActiveSessions(active)
}
