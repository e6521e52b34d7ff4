package service

import (
	"context"
	"fmt"

	"authgate/internal/domain"
	"authgate/internal/security"

	"github.com/google/uuid"
)

// AuthService is a self-contained identity service: registration, login,
// sessions and password reset. Unlike the strategy chain in internal/auth,
// it keeps the session identifier and reset token as mutable fields on the
// user record, which allows at most one active session per user.
type AuthService struct {
	users  domain.UserRepository
	hasher security.Hasher
}

// NewAuthService creates an AuthService backed by the given user store.
func NewAuthService(users domain.UserRepository, hasher security.Hasher) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
	}
}

// RegisterUser hashes the password and inserts a new user. Duplicate email
// is the only rejection; email and password are otherwise taken as given.
// Returns domain.ErrEmailExists if the email is already registered.
func (s *AuthService) RegisterUser(ctx context.Context, email, password string) (*domain.User, error) {
	if _, err := s.users.FindBy(ctx, map[string]any{"email": email}); err == nil {
		return nil, domain.ErrEmailExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ValidLogin reports whether email and password identify a registered user.
func (s *AuthService) ValidLogin(ctx context.Context, email, password string) bool {
	user, err := s.users.FindBy(ctx, map[string]any{"email": email})
	if err != nil {
		return false
	}
	return s.hasher.Verify(user.PasswordHash, password)
}

// CreateSession generates a session identifier and stores it on the user
// record, replacing any previous session for that user.
func (s *AuthService) CreateSession(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindBy(ctx, map[string]any{"email": email})
	if err != nil {
		return "", err
	}

	sessionID := uuid.New().String()
	if err := s.users.Update(ctx, user.ID, map[string]any{"session_id": sessionID}); err != nil {
		return "", err
	}

	return sessionID, nil
}

// GetUserFromSessionID resolves a session identifier to its user.
func (s *AuthService) GetUserFromSessionID(ctx context.Context, sessionID string) (*domain.User, error) {
	if sessionID == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.users.FindBy(ctx, map[string]any{"session_id": sessionID})
}

// DestroySession clears the user's session identifier. Best effort: a
// missing user or store failure leaves nothing to destroy, so errors are
// swallowed and the call is idempotent.
func (s *AuthService) DestroySession(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	_ = s.users.Update(ctx, userID, map[string]any{"session_id": ""})
}

// GetResetPasswordToken generates a reset token and stores it on the user
// record. Returns domain.ErrUserNotFound for an unknown email.
func (s *AuthService) GetResetPasswordToken(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindBy(ctx, map[string]any{"email": email})
	if err != nil {
		return "", domain.ErrUserNotFound
	}

	token, err := security.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	if err := s.users.Update(ctx, user.ID, map[string]any{"reset_token": token}); err != nil {
		return "", err
	}

	return token, nil
}

// UpdatePassword replaces the password of the user holding resetToken and
// clears the token. Returns domain.ErrUserNotFound for a stale or unknown
// token.
func (s *AuthService) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return domain.ErrUserNotFound
	}

	user, err := s.users.FindBy(ctx, map[string]any{"reset_token": resetToken})
	if err != nil {
		return domain.ErrUserNotFound
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.users.Update(ctx, user.ID, map[string]any{
		"password_hash": hash,
		"reset_token":   "",
	})
}
