package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/plainpress/server/internal/store"
	"github.com/plainpress/server/types"
)

// ErrInvalidCredentials is returned when no user matches a login attempt.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialStore looks up users by username and password.
type CredentialStore interface {
	FindUser(ctx context.Context, username, password string) (types.User, error)
}

// SessionManager reads and writes visitor sessions.
type SessionManager interface {
	Establish(ctx context.Context, username string, isAdmin bool) (string, error)
	Clear(ctx context.Context, token string) error
	Status(ctx context.Context, token string) types.SessionStatus
}

// AuthService moves a visitor between anonymous and authenticated.
type AuthService struct {
	credentials CredentialStore
	sessions    SessionManager
	logger      *slog.Logger
}

func NewAuthService(credentials CredentialStore, sessions SessionManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		credentials: credentials,
		sessions:    sessions,
		logger:      logger,
	}
}

// Login checks the credentials and, on a match, establishes a new session.
// It returns the new session token. The visitor's previous session, if any,
// is discarded. On a mismatch no session state is written.
func (s *AuthService) Login(ctx context.Context, currentToken, username, password string) (string, types.SessionStatus, error) {
	user, err := s.credentials.FindUser(ctx, username, password)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", types.AnonymousStatus(), ErrInvalidCredentials
		}
		return "", types.AnonymousStatus(), err
	}

	token, err := s.sessions.Establish(ctx, user.Username, user.IsAdmin())
	if err != nil {
		return "", types.AnonymousStatus(), err
	}

	if currentToken != "" && currentToken != token {
		if err := s.sessions.Clear(ctx, currentToken); err != nil {
			s.logger.Warn("discard previous session failed", slog.Any("error", err))
		}
	}

	s.logger.Info("user logged in", slog.String("username", user.Username), slog.Bool("admin", user.IsAdmin()))
	session := types.Session{
		IsAuthenticated: true,
		Username:        user.Username,
		IsAdmin:         user.IsAdmin(),
	}
	return token, session.Status(), nil
}

// Logout destroys the session. A failure to persist the destruction is
// returned so the caller reports a failed logout.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Clear(ctx, token)
}

func (s *AuthService) Status(ctx context.Context, token string) types.SessionStatus {
	return s.sessions.Status(ctx, token)
}
