package store

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/plainpress/server/types"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// PasswordMatcher compares a supplied password with the stored value.
type PasswordMatcher interface {
	Match(stored, supplied string) bool
}

// PlainMatcher requires the stored value to equal the supplied password.
type PlainMatcher struct{}

func (PlainMatcher) Match(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// BcryptMatcher treats the stored value as a bcrypt hash.
type BcryptMatcher struct{}

func (BcryptMatcher) Match(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}

// AutoMatcher uses bcrypt for stored values that look like bcrypt hashes and
// plain comparison otherwise, so a credential file can be migrated entry by entry.
type AutoMatcher struct{}

func (AutoMatcher) Match(stored, supplied string) bool {
	if IsBcryptHash(stored) {
		return BcryptMatcher{}.Match(stored, supplied)
	}
	return PlainMatcher{}.Match(stored, supplied)
}

// IsBcryptHash reports whether value has the shape of a bcrypt hash.
func IsBcryptHash(value string) bool {
	if len(value) != 60 {
		return false
	}
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

// CredentialStore looks up users in a credential document.
// The document is read on every lookup so external edits apply immediately.
type CredentialStore struct {
	path    string
	matcher PasswordMatcher
}

func NewCredentialStore(path string, matcher PasswordMatcher) *CredentialStore {
	if matcher == nil {
		matcher = AutoMatcher{}
	}
	return &CredentialStore{path: path, matcher: matcher}
}

// FindUser returns the first user whose username and password both match.
func (s *CredentialStore) FindUser(ctx context.Context, username, password string) (types.User, error) {
	users, err := s.load()
	if err != nil {
		return types.User{}, err
	}

	for _, user := range users {
		if user.Username == username && s.matcher.Match(user.Password, password) {
			return user, nil
		}
	}
	return types.User{}, fmt.Errorf("user %q: %w", username, ErrNotFound)
}

func (s *CredentialStore) load() ([]types.User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read credentials: %w", ErrStorage, err)
	}

	var list types.UserList
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &list)
	default:
		err = json.Unmarshal(data, &list)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: credentials: %w", ErrCorruptDocument, err)
	}
	return list.Users, nil
}
