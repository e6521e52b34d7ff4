package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// UserSession is a persisted session record. One session maps to at most
// one user; sessions for different users never share an identifier.
type UserSession struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionRecordStore defines the interface for durable session storage.
// Implementations must return ErrSessionNotFound for a missing record so
// callers can fail closed without inspecting backend errors.
type SessionRecordStore interface {
	Create(ctx context.Context, session *UserSession) error
	GetBySessionID(ctx context.Context, sessionID string) (*UserSession, error)
	Delete(ctx context.Context, sessionID string) error
}
