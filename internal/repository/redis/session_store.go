// Package redis provides a Redis-backed session record store, an
// alternative to the PostgreSQL backend for deployments that want
// session state shared across processes without a relational database.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"authgate/internal/domain"

	"github.com/redis/go-redis/v9"
)

// SessionStore implements domain.SessionRecordStore on Redis. Records are
// stored as JSON under "session:<id>"; when a TTL is configured Redis
// evicts expired sessions on its own, so expiry and storage agree.
type SessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSessionStore creates a Redis-backed session store. A ttl of zero
// means sessions never expire.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: "session:",
		ttl:    ttl,
	}
}

func (s *SessionStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// Create persists a session record.
func (s *SessionStore) Create(ctx context.Context, session *domain.UserSession) error {
	if session.SessionID == "" || session.UserID == "" {
		return fmt.Errorf("session store: missing session_id or user_id")
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session store: failed to marshal: %w", err)
	}

	return s.client.Set(ctx, s.key(session.SessionID), data, s.ttl).Err()
}

// GetBySessionID retrieves a session record by its identifier.
// Returns domain.ErrSessionNotFound for missing or evicted sessions.
func (s *SessionStore) GetBySessionID(ctx context.Context, sessionID string) (*domain.UserSession, error) {
	val, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	var session domain.UserSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("session store: failed to unmarshal: %w", err)
	}

	return &session, nil
}

// Delete removes a session record. Returns domain.ErrSessionNotFound when
// there was nothing to delete.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	deleted, err := s.client.Del(ctx, s.key(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	if deleted == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
