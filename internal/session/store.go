package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/plainpress/server/types"
)

var (
	// ErrNotFound is returned by a Store when no live session exists for a token.
	ErrNotFound = errors.New("session not found")

	// ErrSession is returned when the session store cannot persist a change.
	ErrSession = errors.New("session store failure")
)

// Store persists session state addressed by an opaque token.
// Implementations own expiry.
type Store interface {
	// Get returns ErrNotFound when the session is absent or expired.
	Get(ctx context.Context, token string) (types.Session, error)
	Save(ctx context.Context, token string, session types.Session) error
	// Delete succeeds when the session is already gone.
	Delete(ctx context.Context, token string) error
}

// MemoryStore keeps sessions in process memory with an idle timeout.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]types.Session
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]types.Session),
	}
}

func (m *MemoryStore) Get(ctx context.Context, token string) (types.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return types.Session{}, ErrNotFound
	}
	now := m.now()
	if m.expired(s, now) {
		delete(m.sessions, token)
		return types.Session{}, ErrNotFound
	}
	s.LastSeen = now
	m.sessions[token] = s
	return s, nil
}

func (m *MemoryStore) Save(ctx context.Context, token string, session types.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session.LastSeen = m.now()
	m.sessions[token] = session
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}

// PurgeExpired drops every expired session and returns how many were removed.
func (m *MemoryStore) PurgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for token, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed
}

// RunPurger calls PurgeExpired every interval until ctx is done.
func (m *MemoryStore) RunPurger(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.PurgeExpired()
		}
	}
}

func (m *MemoryStore) expired(s types.Session, now time.Time) bool {
	return m.ttl > 0 && now.Sub(s.LastSeen) > m.ttl
}
