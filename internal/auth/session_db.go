package auth

import (
	"context"
	"net/http"
	"time"

	"authgate/internal/domain"
)

// SessionDBAuth persists session records to a durable store so sessions
// survive process restarts and can be shared across processes. It wraps
// SessionExpAuth by delegation: creating a session still populates the
// in-process table (an accepted redundancy), but lookups and destruction
// go to the store, which is the source of truth.
type SessionDBAuth struct {
	sessions *SessionExpAuth
	store    domain.SessionRecordStore
	users    domain.UserRepository
	now      func() time.Time
}

// NewSessionDBAuth wraps sessions with a durable session record store.
func NewSessionDBAuth(sessions *SessionExpAuth, store domain.SessionRecordStore, users domain.UserRepository) *SessionDBAuth {
	return &SessionDBAuth{
		sessions: sessions,
		store:    store,
		users:    users,
		now:      time.Now,
	}
}

// RequireAuth reports whether path is subject to authentication.
func (a *SessionDBAuth) RequireAuth(path string) bool {
	return a.sessions.RequireAuth(path)
}

// AuthorizationHeader returns the Authorization header value, if any.
func (a *SessionDBAuth) AuthorizationHeader(r *http.Request) string {
	return a.sessions.AuthorizationHeader(r)
}

// SessionCookie returns the session cookie value, if any.
func (a *SessionDBAuth) SessionCookie(r *http.Request) string {
	return a.sessions.SessionCookie(r)
}

// CreateSession obtains a session identifier from the wrapped strategy and
// persists the record. A store failure invalidates the session.
func (a *SessionDBAuth) CreateSession(ctx context.Context, userID string) (string, error) {
	sessionID, err := a.sessions.CreateSession(ctx, userID)
	if err != nil {
		return "", err
	}

	record := &domain.UserSession{
		UserID:    userID,
		SessionID: sessionID,
		CreatedAt: a.now(),
	}
	if err := a.store.Create(ctx, record); err != nil {
		a.sessions.sessions.Table().Delete(sessionID)
		return "", err
	}

	return sessionID, nil
}

// UserIDForSession queries the store for the session record. Store
// failures surface as not found so callers fail closed.
func (a *SessionDBAuth) UserIDForSession(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrInvalidSessionID
	}

	record, err := a.store.GetBySessionID(ctx, sessionID)
	if err != nil {
		return "", domain.ErrSessionNotFound
	}

	return record.UserID, nil
}

// CurrentUser resolves the session cookie to a user via the store.
func (a *SessionDBAuth) CurrentUser(r *http.Request) (*domain.User, error) {
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

// DestroySession deletes the persisted record named by the request's
// cookie. It returns false when there is nothing to destroy.
func (a *SessionDBAuth) DestroySession(r *http.Request) bool {
	if r == nil {
		return false
	}

	cookie := a.SessionCookie(r)
	if cookie == "" {
		return false
	}

	ctx := r.Context()
	if _, err := a.store.GetBySessionID(ctx, cookie); err != nil {
		return false
	}

	if err := a.store.Delete(ctx, cookie); err != nil {
		return false
	}

	a.sessions.sessions.Table().Delete(cookie)
	return true
}
