package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"authgate/internal/domain"
)

// Counter for generating unique IDs
var idCounter atomic.Int64

// nextID generates a unique ID for test fixtures
func nextID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, idCounter.Add(1))
}

// UserOptions allows customizing user fixture creation
type UserOptions struct {
	ID           string
	Email        string
	PasswordHash string
	SessionID    string
	ResetToken   string
	CreatedAt    time.Time
}

// NewTestUser creates a test user with sensible defaults
// Pass options to override specific fields
func NewTestUser(opts ...func(*UserOptions)) *domain.User {
	o := &UserOptions{
		ID:           nextID("user"),
		PasswordHash: "$2a$10$test.hash.for.testing.purposes.only", // bcrypt hash placeholder
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.Email == "" {
		o.Email = o.ID + "@example.com"
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	return &domain.User{
		ID:           o.ID,
		Email:        o.Email,
		PasswordHash: o.PasswordHash,
		SessionID:    o.SessionID,
		ResetToken:   o.ResetToken,
		CreatedAt:    o.CreatedAt,
	}
}

// WithUserID sets the user ID
func WithUserID(id string) func(*UserOptions) {
	return func(o *UserOptions) {
		o.ID = id
	}
}

// WithEmail sets the email
func WithEmail(email string) func(*UserOptions) {
	return func(o *UserOptions) {
		o.Email = email
	}
}

// WithPasswordHash sets the stored password hash
func WithPasswordHash(hash string) func(*UserOptions) {
	return func(o *UserOptions) {
		o.PasswordHash = hash
	}
}

// WithUserSessionID sets the session id held on the user record
func WithUserSessionID(sessionID string) func(*UserOptions) {
	return func(o *UserOptions) {
		o.SessionID = sessionID
	}
}

// WithResetToken sets the reset token held on the user record
func WithResetToken(token string) func(*UserOptions) {
	return func(o *UserOptions) {
		o.ResetToken = token
	}
}

// SessionOptions allows customizing session record fixture creation
type SessionOptions struct {
	UserID    string
	SessionID string
	CreatedAt time.Time
}

// NewTestSession creates a persisted-session fixture with sensible defaults
func NewTestSession(opts ...func(*SessionOptions)) *domain.UserSession {
	o := &SessionOptions{
		UserID:    nextID("user"),
		SessionID: nextID("session"),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	return &domain.UserSession{
		UserID:    o.UserID,
		SessionID: o.SessionID,
		CreatedAt: o.CreatedAt,
	}
}

// WithSessionUserID sets the user the session belongs to
func WithSessionUserID(userID string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.UserID = userID
	}
}

// WithSessionID sets the session identifier
func WithSessionID(sessionID string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.SessionID = sessionID
	}
}

// WithSessionCreatedAt sets the session creation time
func WithSessionCreatedAt(createdAt time.Time) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.CreatedAt = createdAt
	}
}
