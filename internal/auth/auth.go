package auth

import (
	"errors"
	"net/http"

	"authgate/internal/domain"
)

var (
	// ErrNoAuthenticatedUser is the generic "absent" result of an
	// authentication chain. Malformed credentials and store misses both
	// collapse to it at the boundary; the chain errors below stay
	// distinguishable for callers that care.
	ErrNoAuthenticatedUser = errors.New("no authenticated user")

	ErrMissingAuthHeader    = errors.New("missing authorization header")
	ErrNotBasicAuth         = errors.New("authorization header is not basic auth")
	ErrInvalidBase64        = errors.New("invalid base64 payload")
	ErrMalformedCredentials = errors.New("malformed credentials")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidUserID        = errors.New("invalid user id")
	ErrInvalidSessionID     = errors.New("invalid session id")
	ErrMissingSessionCookie = errors.New("missing session cookie")
)

// Authenticator is the capability contract shared by all authentication
// strategies. CurrentUser resolves the request to a user or returns an
// error; any error means "not authenticated" (fail closed).
type Authenticator interface {
	RequireAuth(path string) bool
	AuthorizationHeader(r *http.Request) string
	SessionCookie(r *http.Request) string
	CurrentUser(r *http.Request) (*domain.User, error)
}

// Base holds the configuration every strategy shares: the session cookie
// name and the excluded path patterns. Both are immutable after
// construction.
type Base struct {
	cookieName    string
	excludedPaths []string
}

// NewBase creates the shared strategy configuration.
func NewBase(cookieName string, excludedPaths []string) Base {
	return Base{cookieName: cookieName, excludedPaths: excludedPaths}
}

// RequireAuth reports whether path is subject to authentication.
func (b Base) RequireAuth(path string) bool {
	return RequiresAuth(path, b.excludedPaths)
}

// AuthorizationHeader returns the Authorization header verbatim, or ""
// if the request or header is missing.
func (b Base) AuthorizationHeader(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.Header.Get("Authorization")
}

// SessionCookie returns the value of the configured session cookie, or ""
// if the request or cookie is missing.
func (b Base) SessionCookie(r *http.Request) string {
	if r == nil || b.cookieName == "" {
		return ""
	}
	cookie, err := r.Cookie(b.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
