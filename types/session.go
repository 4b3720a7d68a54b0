package types

import "time"

// Session is the server-side state of one visitor's session.
type Session struct {
	// IsAuthenticated is set once a login succeeded.
	IsAuthenticated bool `json:"is_authenticated"`

	// Username of the logged-in user. Empty when anonymous.
	Username string `json:"username,omitempty"`

	// IsAdmin grants access to article management.
	IsAdmin bool `json:"is_admin"`

	// LastSeen is refreshed on every read and drives idle expiry.
	LastSeen time.Time `json:"last_seen"`
}

// SessionStatus is the public view of a session.
type SessionStatus struct {
	IsAuthenticated bool    `json:"isAuthenticated"`
	Username        *string `json:"username"`
	IsAdmin         bool    `json:"isAdmin"`
}

// Status converts the session into its public view.
func (s Session) Status() SessionStatus {
	status := SessionStatus{
		IsAuthenticated: s.IsAuthenticated,
		IsAdmin:         s.IsAdmin,
	}
	if s.IsAuthenticated && s.Username != "" {
		username := s.Username
		status.Username = &username
	}
	return status
}

// AnonymousStatus is the status of a visitor without a session.
func AnonymousStatus() SessionStatus {
	return SessionStatus{}
}
