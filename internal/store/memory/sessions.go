// Package memory holds in-process stores for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aurorains/insurance-platform/internal/core"
)

// SessionStore is a map-backed session store. Sessions are lost on restart
// and not shared between instances; production deployments use the Redis
// store instead.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]entry
}

type entry struct {
	session   core.Session
	expiresAt time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]entry)}
}

func (s *SessionStore) Put(_ context.Context, session core.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = entry{
		session:   session,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *SessionStore) Get(_ context.Context, token string) (core.Session, error) {
	s.mu.RLock()
	e, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return core.Session{}, core.ErrSessionNotFound
	}
	if time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return core.Session{}, core.ErrSessionNotFound
	}
	return e.session, nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
