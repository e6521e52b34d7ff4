package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"authgate/internal/auth"
	"authgate/internal/domain"
	"authgate/internal/middleware"
	"authgate/internal/observability"
	"authgate/internal/service"
)

// AuthHandler handles registration, login and password reset endpoints.
// sessions is nil when the configured authenticator has no session support
// (basic auth); login then falls back to the user-record session.
type AuthHandler struct {
	authService *service.AuthService
	sessions    auth.SessionManager
	users       domain.UserRepository
	cookieName  string
	cookieTTL   time.Duration
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *service.AuthService, sessions auth.SessionManager, users domain.UserRepository, cookieName string, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		users:       users,
		cookieName:  cookieName,
		cookieTTL:   cookieTTL,
	}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user record
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetTokenRequest asks for a password reset token
type ResetTokenRequest struct {
	Email string `json:"email"`
}

// UpdatePasswordRequest consumes a reset token
type UpdatePasswordRequest struct {
	Email       string `json:"email"`
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}

func userResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	user, err := h.authService.RegisterUser(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailExists):
			http.Error(w, `{"error":"email already registered"}`, http.StatusBadRequest)
		default:
			observability.Error("registration failed", "error", err)
			http.Error(w, `{"error":"Internal server error"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(userResponse(user))
}

// Login validates credentials and opens a session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if req.Email == "" {
		http.Error(w, `{"error":"email missing"}`, http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		http.Error(w, `{"error":"password missing"}`, http.StatusBadRequest)
		return
	}

	if !h.authService.ValidLogin(r.Context(), req.Email, req.Password) {
		observability.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		http.Error(w, `{"error":"wrong password"}`, http.StatusUnauthorized)
		return
	}
	observability.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()

	user, err := h.users.FindBy(r.Context(), map[string]any{"email": req.Email})
	if err != nil {
		observability.Error("login lookup failed", "error", err)
		http.Error(w, `{"error":"Internal server error"}`, http.StatusInternalServerError)
		return
	}

	var sessionID string
	if h.sessions != nil {
		sessionID, err = h.sessions.CreateSession(r.Context(), user.ID)
	} else {
		sessionID, err = h.authService.CreateSession(r.Context(), req.Email)
	}
	if err != nil {
		observability.Error("session creation failed", "error", err)
		http.Error(w, `{"error":"Internal server error"}`, http.StatusInternalServerError)
		return
	}

	observability.SessionsActive.Inc()
	http.SetCookie(w, h.sessionCookie(sessionID, h.cookieMaxAge()))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(userResponse(user))
}

// Logout destroys the current session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	destroyed := false
	if h.sessions != nil {
		destroyed = h.sessions.DestroySession(r)
	} else if user, ok := middleware.GetUser(r.Context()); ok {
		h.authService.DestroySession(r.Context(), user.ID)
		destroyed = true
	}

	if !destroyed {
		http.Error(w, `{"error":"Not found"}`, http.StatusNotFound)
		return
	}

	observability.SessionsActive.Dec()

	// Clear cookie
	http.SetCookie(w, h.sessionCookie("", -1))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(userResponse(user))
}

// ResetPasswordToken issues a password reset token for the given email.
// The token is returned in the response body; mail delivery is out of scope.
func (h *AuthHandler) ResetPasswordToken(w http.ResponseWriter, r *http.Request) {
	var req ResetTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	token, err := h.authService.GetResetPasswordToken(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			observability.PasswordResetsTotal.WithLabelValues("unknown_email").Inc()
			http.Error(w, `{"error":"Not found"}`, http.StatusNotFound)
			return
		}
		observability.Error("reset token generation failed", "error", err)
		http.Error(w, `{"error":"Internal server error"}`, http.StatusInternalServerError)
		return
	}

	observability.PasswordResetsTotal.WithLabelValues("token_issued").Inc()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"email":       req.Email,
		"reset_token": token,
	})
}

// UpdatePassword consumes a reset token and sets the new password
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := h.authService.UpdatePassword(r.Context(), req.ResetToken, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			observability.PasswordResetsTotal.WithLabelValues("stale_token").Inc()
			http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
			return
		}
		observability.Error("password update failed", "error", err)
		http.Error(w, `{"error":"Internal server error"}`, http.StatusInternalServerError)
		return
	}

	observability.PasswordResetsTotal.WithLabelValues("password_updated").Inc()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"email":   req.Email,
		"message": "Password updated",
	})
}

func (h *AuthHandler) cookieMaxAge() int {
	if h.cookieTTL <= 0 {
		return 0 // session cookie, no expiry
	}
	return int(h.cookieTTL.Seconds())
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteStrictMode,
	}
}
