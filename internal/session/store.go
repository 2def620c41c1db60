// Package session binds opaque browser tokens to identity IDs. The core
// never reads ambient session state; this package resolves the token and
// hands the explicit identity ID to the handlers.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Store is an in-memory token-to-identity binding. Bindings do not
// survive a restart; a lost binding just triggers the recovery path on
// the next request.
type Store struct {
	mu       sync.RWMutex
	bindings map[string]int
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{bindings: make(map[string]int)}
}

// Bind creates a fresh token bound to the identity ID.
func (s *Store) Bind(identityID int) string {
	token := uuid.NewString()

	s.mu.Lock()
	s.bindings[token] = identityID
	s.mu.Unlock()

	return token
}

// Resolve returns the identity ID bound to the token.
func (s *Store) Resolve(token string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bindings[token]
	return id, ok
}

// Rebind points an existing token at a different identity ID.
func (s *Store) Rebind(token string, identityID int) {
	s.mu.Lock()
	s.bindings[token] = identityID
	s.mu.Unlock()
}

// Clear removes the binding for a token.
func (s *Store) Clear(token string) {
	s.mu.Lock()
	delete(s.bindings, token)
	s.mu.Unlock()
}
