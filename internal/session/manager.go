package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/plainpress/server/types"
)

// Manager reads and writes the authentication fields of visitor sessions.
type Manager struct {
	store    Store
	newToken func() string
}

func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		newToken: uuid.NewString,
	}
}

// Establish creates an authenticated session under a fresh token.
func (m *Manager) Establish(ctx context.Context, username string, isAdmin bool) (string, error) {
	token := m.newToken()
	err := m.store.Save(ctx, token, types.Session{
		IsAuthenticated: true,
		Username:        username,
		IsAdmin:         isAdmin,
	})
	if err != nil {
		return "", fmt.Errorf("%w: save session: %w", ErrSession, err)
	}
	return token, nil
}

// Clear destroys the session behind token. An empty token is a no-op.
func (m *Manager) Clear(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	if err := m.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("%w: delete session: %w", ErrSession, err)
	}
	return nil
}

// Status returns the public view of the session. Missing, expired or
// unreadable sessions report the anonymous status.
func (m *Manager) Status(ctx context.Context, token string) types.SessionStatus {
	if strings.TrimSpace(token) == "" {
		return types.AnonymousStatus()
	}
	s, err := m.store.Get(ctx, token)
	if err != nil {
		return types.AnonymousStatus()
	}
	return s.Status()
}
