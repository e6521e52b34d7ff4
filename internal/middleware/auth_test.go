package middleware

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"authgate/internal/auth"
	"authgate/internal/security"
	"authgate/internal/testutil"

	"github.com/stretchr/testify/require"
)

func newGatedHandler(t *testing.T, a auth.Authenticator) (http.Handler, *bool) {
	t.Helper()
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return Auth(a, "test")(next), &called
}

func TestAuth_ExcludedPathSkipsAuth(t *testing.T) {
	users := testutil.NewMockUserRepository()
	base := auth.NewBase("session_id", []string{"/api/v1/status", "/api/v1/stat*"})
	a := auth.NewSessionAuth(base, auth.NewSessionTable(), users)

	handler, called := newGatedHandler(t, a)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertTrue(t, *called, "next handler should be called for excluded path")
}

func TestAuth_NoCredentials(t *testing.T) {
	users := testutil.NewMockUserRepository()
	base := auth.NewBase("session_id", nil)
	a := auth.NewSessionAuth(base, auth.NewSessionTable(), users)

	handler, called := newGatedHandler(t, a)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusUnauthorized)
	testutil.AssertFalse(t, *called, "next handler should not be called")
	testutil.AssertContains(t, w.Body.String(), "Unauthorized")
}

func TestAuth_InvalidSession(t *testing.T) {
	users := testutil.NewMockUserRepository()
	base := auth.NewBase("session_id", nil)
	a := auth.NewSessionAuth(base, auth.NewSessionTable(), users)

	handler, called := newGatedHandler(t, a)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "stale-session"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusForbidden)
	testutil.AssertFalse(t, *called, "next handler should not be called")
	testutil.AssertContains(t, w.Body.String(), "Forbidden")
}

func TestAuth_ValidSession(t *testing.T) {
	users := testutil.NewMockUserRepository()
	user := testutil.NewTestUser()
	users.Users[user.ID] = user

	base := auth.NewBase("session_id", nil)
	a := auth.NewSessionAuth(base, auth.NewSessionTable(), users)

	sessionID, err := a.CreateSession(context.Background(), user.ID)
	require.NoError(t, err)

	var seenUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := GetUser(r.Context()); ok {
			seenUserID = u.ID
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := Auth(a, "session")(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: sessionID})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertTrue(t, seenUserID == user.ID, "authenticated user should be in context")
}

func TestAuth_ValidBasicCredentials(t *testing.T) {
	users := testutil.NewMockUserRepository()
	hasher := security.NewBcryptHasher(4)
	hash, err := hasher.Hash("password123")
	require.NoError(t, err)
	user := testutil.NewTestUser(
		testutil.WithEmail("alice@example.com"),
		testutil.WithPasswordHash(hash),
	)
	users.Users[user.ID] = user

	base := auth.NewBase("session_id", nil)
	a := auth.NewBasicAuth(base, users, hasher)

	handler, called := newGatedHandler(t, a)

	payload := base64.StdEncoding.EncodeToString([]byte("alice@example.com:password123"))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Basic "+payload)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertTrue(t, *called, "next handler should be called")
}

func TestGetUser_MissingFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetUser(req.Context())
	testutil.AssertFalse(t, ok, "no user expected in bare context")
}
