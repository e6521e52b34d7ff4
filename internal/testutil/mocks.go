// Package testutil provides shared test utilities, mocks, and fixtures
// for testing the authgate application.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"authgate/internal/domain"
)

// Common test errors
var (
	ErrMockNotImplemented = errors.New("mock function not implemented")
	ErrMockNotFound       = errors.New("mock: not found")
)

var userColumns = map[string]bool{
	"id":            true,
	"email":         true,
	"password_hash": true,
	"session_id":    true,
	"reset_token":   true,
}

// MockUserRepository implements domain.UserRepository for testing
type MockUserRepository struct {
	mu sync.RWMutex

	// Function overrides - set these to customize behavior
	CreateFunc func(ctx context.Context, user *domain.User) error
	FindByFunc func(ctx context.Context, criteria map[string]any) (*domain.User, error)
	UpdateFunc func(ctx context.Context, id string, fields map[string]any) error

	// In-memory storage for simple tests
	Users map[string]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository with initialized maps
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Users == nil {
		m.Users = make(map[string]*domain.User)
	}

	for _, u := range m.Users {
		if u.Email == user.Email {
			return domain.ErrEmailExists
		}
	}

	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(m.Users)+1)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.Users[user.ID] = user
	return nil
}

func (m *MockUserRepository) FindBy(ctx context.Context, criteria map[string]any) (*domain.User, error) {
	if m.FindByFunc != nil {
		return m.FindByFunc(ctx, criteria)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(criteria) == 0 {
		return nil, domain.ErrInvalidQuery
	}
	for column := range criteria {
		if !userColumns[column] {
			return nil, domain.ErrInvalidQuery
		}
	}

	for _, user := range m.Users {
		if userMatches(user, criteria) {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, fields)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for column := range fields {
		if !userColumns[column] {
			return domain.ErrInvalidQuery
		}
	}

	user, ok := m.Users[id]
	if !ok {
		return domain.ErrUserNotFound
	}

	for column, value := range fields {
		s, _ := value.(string)
		switch column {
		case "email":
			user.Email = s
		case "password_hash":
			user.PasswordHash = s
		case "session_id":
			user.SessionID = s
		case "reset_token":
			user.ResetToken = s
		}
	}
	return nil
}

func userMatches(user *domain.User, criteria map[string]any) bool {
	for column, value := range criteria {
		s, _ := value.(string)
		switch column {
		case "id":
			if user.ID != s {
				return false
			}
		case "email":
			if user.Email != s {
				return false
			}
		case "password_hash":
			if user.PasswordHash != s {
				return false
			}
		case "session_id":
			if user.SessionID == "" || user.SessionID != s {
				return false
			}
		case "reset_token":
			if user.ResetToken == "" || user.ResetToken != s {
				return false
			}
		}
	}
	return true
}

// MockSessionRecordStore implements domain.SessionRecordStore for testing
type MockSessionRecordStore struct {
	mu sync.RWMutex

	// Function overrides - set these to customize behavior
	CreateFunc         func(ctx context.Context, session *domain.UserSession) error
	GetBySessionIDFunc func(ctx context.Context, sessionID string) (*domain.UserSession, error)
	DeleteFunc         func(ctx context.Context, sessionID string) error

	// In-memory storage for simple tests
	Sessions map[string]*domain.UserSession
}

// NewMockSessionRecordStore creates a new MockSessionRecordStore with initialized maps
func NewMockSessionRecordStore() *MockSessionRecordStore {
	return &MockSessionRecordStore{
		Sessions: make(map[string]*domain.UserSession),
	}
}

func (m *MockSessionRecordStore) Create(ctx context.Context, session *domain.UserSession) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Sessions == nil {
		m.Sessions = make(map[string]*domain.UserSession)
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	m.Sessions[session.SessionID] = session
	return nil
}

func (m *MockSessionRecordStore) GetBySessionID(ctx context.Context, sessionID string) (*domain.UserSession, error) {
	if m.GetBySessionIDFunc != nil {
		return m.GetBySessionIDFunc(ctx, sessionID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.Sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionRecordStore) Delete(ctx context.Context, sessionID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, sessionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Sessions[sessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.Sessions, sessionID)
	return nil
}
