package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"authgate/internal/domain"

	"github.com/google/uuid"
)

// Entry is a session table record. CreatedAt is zero for sessions created
// without expiration tracking.
type Entry struct {
	UserID    string
	CreatedAt time.Time
}

// SessionTable is the in-process session store shared by the session
// strategies. It is constructed once and passed to whichever strategy
// needs it; ownership is explicit in the constructor signatures.
// Writes are serialized; lookups may run concurrently.
type SessionTable struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewSessionTable creates an empty session table.
func NewSessionTable() *SessionTable {
	return &SessionTable{entries: make(map[string]Entry)}
}

// Put stores or replaces the entry for sessionID.
func (t *SessionTable) Put(sessionID string, entry Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[sessionID] = entry
}

// Get returns the entry for sessionID, if present.
func (t *SessionTable) Get(sessionID string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entry, ok := t.entries[sessionID]
	return entry, ok
}

// Delete removes the entry for sessionID and reports whether it existed.
func (t *SessionTable) Delete(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[sessionID]; !ok {
		return false
	}
	delete(t.entries, sessionID)
	return true
}

// Len returns the number of live entries.
func (t *SessionTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// SessionManager extends Authenticator with the session lifecycle shared
// by the session-based strategies.
type SessionManager interface {
	Authenticator
	CreateSession(ctx context.Context, userID string) (string, error)
	UserIDForSession(ctx context.Context, sessionID string) (string, error)
	DestroySession(r *http.Request) bool
}

// SessionAuth authenticates requests through opaque session identifiers
// held in an in-process table. Sessions live for the process lifetime
// unless destroyed.
type SessionAuth struct {
	Base
	table *SessionTable
	users domain.UserRepository
}

// NewSessionAuth creates an in-memory session strategy backed by table.
func NewSessionAuth(base Base, table *SessionTable, users domain.UserRepository) *SessionAuth {
	return &SessionAuth{
		Base:  base,
		table: table,
		users: users,
	}
}

// Table exposes the backing session table to wrapping strategies.
func (a *SessionAuth) Table() *SessionTable {
	return a.table
}

// CreateSession generates a fresh random session identifier for userID and
// stores the mapping. Identifiers are UUIDv4; no collision check is made.
func (a *SessionAuth) CreateSession(_ context.Context, userID string) (string, error) {
	if userID == "" {
		return "", ErrInvalidUserID
	}
	sessionID := uuid.New().String()
	a.table.Put(sessionID, Entry{UserID: userID})
	return sessionID, nil
}

// UserIDForSession returns the user mapped to sessionID.
func (a *SessionAuth) UserIDForSession(_ context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrInvalidSessionID
	}
	entry, ok := a.table.Get(sessionID)
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	return entry.UserID, nil
}

// CurrentUser resolves the session cookie to a user.
func (a *SessionAuth) CurrentUser(r *http.Request) (*domain.User, error) {
	if r == nil {
		return nil, ErrNoAuthenticatedUser
	}

	cookie := a.SessionCookie(r)
	if cookie == "" {
		return nil, ErrMissingSessionCookie
	}

	userID, err := a.UserIDForSession(r.Context(), cookie)
	if err != nil {
		return nil, err
	}

	return a.users.FindBy(r.Context(), map[string]any{"id": userID})
}

// DestroySession removes the session named by the request's cookie.
// It returns false when there is nothing to destroy.
func (a *SessionAuth) DestroySession(r *http.Request) bool {
	if r == nil {
		return false
	}

	cookie := a.SessionCookie(r)
	if cookie == "" {
		return false
	}

	return a.table.Delete(cookie)
}
