package middleware

import (
	"context"
	"net/http"

	"authgate/internal/auth"
	"authgate/internal/domain"
	"authgate/internal/observability"
)

type contextKey string

const UserKey contextKey = "user"

// Auth gates every request behind the given authentication strategy.
// Excluded paths pass straight through. For the rest: a request carrying
// neither an Authorization header nor a session cookie is rejected with
// 401; a request whose credentials resolve to no user with 403. On
// success the user is stored in the request context.
//
// scheme names the strategy in the auth metrics ("basic", "session", ...).
func Auth(a auth.Authenticator, scheme string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.RequireAuth(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if a.AuthorizationHeader(r) == "" && a.SessionCookie(r) == "" {
				observability.AuthAttemptsTotal.WithLabelValues(scheme, "unauthorized").Inc()
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}

			user, err := a.CurrentUser(r)
			if err != nil {
				observability.AuthAttemptsTotal.WithLabelValues(scheme, "forbidden").Inc()
				if !auth.IsNotAuthenticated(err) {
					observability.FromContext(r.Context()).Error("authentication failed",
						"scheme", scheme, "error", err.Error())
				}
				http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
				return
			}

			observability.AuthAttemptsTotal.WithLabelValues(scheme, "success").Inc()

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = observability.WithUserID(ctx, user.ID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the authenticated user stored in the request context.
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok
}

// WithUser stores an authenticated user in the context.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}
