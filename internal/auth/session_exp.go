package auth

import (
	"context"
	"net/http"
	"time"

	"authgate/internal/domain"
)

// SessionExpAuth adds an expiration window to SessionAuth. It wraps the
// in-memory strategy by explicit delegation so the composition order stays
// visible and each layer remains testable on its own.
//
// Expiration is evaluated at lookup time only; expired entries stay in the
// table until overwritten or destroyed.
type SessionExpAuth struct {
	sessions *SessionAuth
	duration time.Duration
	now      func() time.Time
}

// NewSessionExpAuth wraps sessions with an expiration window. A duration
// of zero or less means sessions never expire.
func NewSessionExpAuth(sessions *SessionAuth, duration time.Duration) *SessionExpAuth {
	return &SessionExpAuth{
		sessions: sessions,
		duration: duration,
		now:      time.Now,
	}
}

// RequireAuth reports whether path is subject to authentication.
func (a *SessionExpAuth) RequireAuth(path string) bool {
	return a.sessions.RequireAuth(path)
}

// AuthorizationHeader returns the Authorization header value, if any.
func (a *SessionExpAuth) AuthorizationHeader(r *http.Request) string {
	return a.sessions.AuthorizationHeader(r)
}

// SessionCookie returns the session cookie value, if any.
func (a *SessionExpAuth) SessionCookie(r *http.Request) string {
	return a.sessions.SessionCookie(r)
}

// CreateSession delegates to the wrapped strategy, then stamps the table
// entry with the creation time the expiry check needs.
func (a *SessionExpAuth) CreateSession(ctx context.Context, userID string) (string, error) {
	sessionID, err := a.sessions.CreateSession(ctx, userID)
	if err != nil {
		return "", err
	}
	a.sessions.Table().Put(sessionID, Entry{UserID: userID, CreatedAt: a.now()})
	return sessionID, nil
}

// UserIDForSession returns the user mapped to sessionID unless the session
// has outlived the configured duration.
func (a *SessionExpAuth) UserIDForSession(_ context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrInvalidSessionID
	}

	entry, ok := a.sessions.Table().Get(sessionID)
	if !ok || entry.UserID == "" {
		return "", domain.ErrSessionNotFound
	}

	if a.duration <= 0 {
		return entry.UserID, nil
	}

	if entry.CreatedAt.IsZero() {
		return "", domain.ErrSessionNotFound
	}

	if entry.CreatedAt.Add(a.duration).Before(a.now()) {
		return "", domain.ErrSessionExpired
	}

	return entry.UserID, nil
}

// CurrentUser resolves the session cookie to a user, honoring expiration.
func (a *SessionExpAuth) CurrentUser(r *http.Request) (*domain.User, error) {
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

	return a.sessions.users.FindBy(r.Context(), map[string]any{"id": userID})
}

// DestroySession delegates to the wrapped strategy; both share one table.
func (a *SessionExpAuth) DestroySession(r *http.Request) bool {
	return a.sessions.DestroySession(r)
}
