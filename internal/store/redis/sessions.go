// Package redis holds the Redis-backed session store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aurorains/insurance-platform/internal/core"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps sessions in Redis with a TTL, so logins survive process
// restarts and are shared across instances.
type SessionStore struct {
	client *goredis.Client
}

func NewSessionStore(addr, password string) (*SessionStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &SessionStore{client: client}, nil
}

func (s *SessionStore) Put(ctx context.Context, session core.Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.Token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("sessions.set: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (core.Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return core.Session{}, core.ErrSessionNotFound
		}
		return core.Session{}, fmt.Errorf("sessions.get: %w", err)
	}

	var session core.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return core.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("sessions.del: %w", err)
	}
	return nil
}

// Ping verifies connectivity (used by /readyz).
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *SessionStore) Close() error {
	return s.client.Close()
}
