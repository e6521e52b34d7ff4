package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"authgate/internal/domain"
	"authgate/internal/security"
)

const basicPrefix = "Basic "

// BasicAuth authenticates requests carrying HTTP Basic credentials in the
// Authorization header. Each extraction step is a separate method so the
// chain can be tested in isolation; CurrentUser runs them in order and
// short-circuits at the first failure.
type BasicAuth struct {
	Base
	users  domain.UserRepository
	hasher security.Hasher
}

// NewBasicAuth creates a Basic authentication strategy.
func NewBasicAuth(base Base, users domain.UserRepository, hasher security.Hasher) *BasicAuth {
	return &BasicAuth{
		Base:   base,
		users:  users,
		hasher: hasher,
	}
}

// ExtractBase64Header returns the base64 payload of a Basic Authorization
// header, or ErrNotBasicAuth if the header does not carry the "Basic "
// prefix.
func (a *BasicAuth) ExtractBase64Header(header string) (string, error) {
	if header == "" {
		return "", ErrMissingAuthHeader
	}
	if !strings.HasPrefix(header, basicPrefix) {
		return "", ErrNotBasicAuth
	}
	return header[len(basicPrefix):], nil
}

// DecodeBase64 decodes a standard base64 payload into UTF-8 text.
// Any decode or encoding failure is recovered into ErrInvalidBase64.
func (a *BasicAuth) DecodeBase64(encoded string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	if !utf8.Valid(decoded) {
		return "", ErrInvalidBase64
	}
	return string(decoded), nil
}

// ExtractCredentials splits decoded "email:password" text on the first
// colon only, so passwords may themselves contain colons.
func (a *BasicAuth) ExtractCredentials(decoded string) (string, string, error) {
	email, password, found := strings.Cut(decoded, ":")
	if !found {
		return "", "", ErrMalformedCredentials
	}
	return email, password, nil
}

// ResolveUser looks the user up by email and verifies the password against
// the stored hash. Lookup failures and hash mismatches both collapse to
// ErrInvalidCredentials so callers cannot probe which emails exist.
func (a *BasicAuth) ResolveUser(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := a.users.FindBy(ctx, map[string]any{"email": email})
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !a.hasher.Verify(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// CurrentUser resolves the request through the full Basic auth chain:
// header, base64 extraction, decode, credential split, user resolution.
func (a *BasicAuth) CurrentUser(r *http.Request) (*domain.User, error) {
	if r == nil {
		return nil, ErrNoAuthenticatedUser
	}

	payload, err := a.ExtractBase64Header(a.AuthorizationHeader(r))
	if err != nil {
		return nil, err
	}

	decoded, err := a.DecodeBase64(payload)
	if err != nil {
		return nil, err
	}

	email, password, err := a.ExtractCredentials(decoded)
	if err != nil {
		return nil, err
	}

	user, err := a.ResolveUser(r.Context(), email, password)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// IsNotAuthenticated reports whether err is one of the recoverable
// authentication failures, as opposed to an unexpected store breakage.
func IsNotAuthenticated(err error) bool {
	return errors.Is(err, ErrNoAuthenticatedUser) ||
		errors.Is(err, ErrMissingAuthHeader) ||
		errors.Is(err, ErrNotBasicAuth) ||
		errors.Is(err, ErrInvalidBase64) ||
		errors.Is(err, ErrMalformedCredentials) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidSessionID) ||
		errors.Is(err, ErrMissingSessionCookie) ||
		errors.Is(err, domain.ErrSessionNotFound) ||
		errors.Is(err, domain.ErrSessionExpired) ||
		errors.Is(err, domain.ErrUserNotFound)
}
