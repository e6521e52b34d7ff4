package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")

	// ErrInvalidQuery marks a malformed lookup (unknown column, empty
	// criteria) so callers never mistake a broken query for a miss.
	ErrInvalidQuery = errors.New("invalid query")
)

// User represents an identity record. SessionID and ResetToken are only
// populated by the single-session-per-user auth service; the session-table
// authenticators keep session state outside the user record.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	SessionID    string    `json:"-"`
	ResetToken   string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRepository defines the interface for user data access.
// FindBy and Update take a criteria/field map restricted to known columns;
// an unknown key yields ErrInvalidQuery, an empty result ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindBy(ctx context.Context, criteria map[string]any) (*User, error)
	Update(ctx context.Context, id string, fields map[string]any) error
}
