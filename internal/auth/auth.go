package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator decides whether a login attempt is granted. Implementations
// must be safe for concurrent use, one call can be in flight per connection
// handler.
type Authenticator interface {
	Authenticate(username, password string) bool
}

// AuthenticatorFunc adapts a plain function to the Authenticator interface.
type AuthenticatorFunc func(username, password string) bool

func (f AuthenticatorFunc) Authenticate(username, password string) bool {
	return f(username, password)
}

// Hash of an unguessable value, compared against when the username is
// unknown so both branches cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("rowd-no-such-user"), bcrypt.DefaultCost)

// Store is an in-memory Authenticator holding bcrypt password hashes.
type Store struct {
	mu    sync.RWMutex
	users map[string][]byte
}

func NewStore() *Store {
	return &Store{
		users: make(map[string][]byte),
	}
}

// Add hashes password and registers it for username, replacing any previous
// entry.
func (s *Store) Add(username, password string) error {
	if username == "" {
		return fmt.Errorf("auth: empty username")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: hash password for %q: %w", username, err)
	}
	s.mu.Lock()
	s.users[username] = hash
	s.mu.Unlock()
	return nil
}

func (s *Store) Authenticate(username, password string) bool {
	s.mu.RLock()
	hash, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		hash = dummyHash
	}
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	return ok && err == nil
}
