package auth

import (
	"context"
	"testing"
	"time"

	"authgate/internal/domain"
	"authgate/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDBAuth(users *testutil.MockUserRepository, store *testutil.MockSessionRecordStore) *SessionDBAuth {
	exp := newExpAuth(users, time.Minute)
	return NewSessionDBAuth(exp, store, users)
}

func TestSessionDBAuth_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("persists_record", func(t *testing.T) {
		store := testutil.NewMockSessionRecordStore()
		a := newDBAuth(testutil.NewMockUserRepository(), store)

		sessionID, err := a.CreateSession(ctx, "user-123")
		require.NoError(t, err)

		record, err := store.GetBySessionID(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "user-123", record.UserID)

		// the in-memory table is still populated as a side effect
		entry, ok := a.sessions.sessions.Table().Get(sessionID)
		require.True(t, ok)
		assert.Equal(t, "user-123", entry.UserID)
	})

	t.Run("round_trip", func(t *testing.T) {
		a := newDBAuth(testutil.NewMockUserRepository(), testutil.NewMockSessionRecordStore())

		sessionID, err := a.CreateSession(ctx, "user-123")
		require.NoError(t, err)

		userID, err := a.UserIDForSession(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "user-123", userID)
	})

	t.Run("empty_user_id", func(t *testing.T) {
		a := newDBAuth(testutil.NewMockUserRepository(), testutil.NewMockSessionRecordStore())
		_, err := a.CreateSession(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidUserID)
	})

	t.Run("store_failure_rolls_back_table", func(t *testing.T) {
		store := testutil.NewMockSessionRecordStore()
		store.CreateFunc = func(ctx context.Context, session *domain.UserSession) error {
			return assert.AnError
		}
		a := newDBAuth(testutil.NewMockUserRepository(), store)

		_, err := a.CreateSession(ctx, "user-123")
		require.Error(t, err)
		assert.Equal(t, 0, a.sessions.sessions.Table().Len())
	})
}

func TestSessionDBAuth_UserIDForSession(t *testing.T) {
	ctx := context.Background()

	t.Run("reads_from_store_not_memory", func(t *testing.T) {
		store := testutil.NewMockSessionRecordStore()
		a := newDBAuth(testutil.NewMockUserRepository(), store)

		// record written by another process: absent from the local table
		record := testutil.NewTestSession(testutil.WithSessionUserID("user-456"))
		require.NoError(t, store.Create(ctx, record))

		userID, err := a.UserIDForSession(ctx, record.SessionID)
		require.NoError(t, err)
		assert.Equal(t, "user-456", userID)
	})

	t.Run("empty_session_id", func(t *testing.T) {
		a := newDBAuth(testutil.NewMockUserRepository(), testutil.NewMockSessionRecordStore())
		_, err := a.UserIDForSession(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidSessionID)
	})

	t.Run("store_failure_reads_as_not_found", func(t *testing.T) {
		store := testutil.NewMockSessionRecordStore()
		store.GetBySessionIDFunc = func(ctx context.Context, sessionID string) (*domain.UserSession, error) {
			return nil, assert.AnError
		}
		a := newDBAuth(testutil.NewMockUserRepository(), store)

		_, err := a.UserIDForSession(ctx, "whatever")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestSessionDBAuth_CurrentUser(t *testing.T) {
	users := testutil.NewMockUserRepository()
	user := testutil.NewTestUser()
	users.Users[user.ID] = user

	store := testutil.NewMockSessionRecordStore()
	a := newDBAuth(users, store)
	ctx := context.Background()

	sessionID, err := a.CreateSession(ctx, user.ID)
	require.NoError(t, err)

	t.Run("valid_cookie", func(t *testing.T) {
		resolved, err := a.CurrentUser(sessionRequest(sessionID))
		require.NoError(t, err)
		assert.Equal(t, user.ID, resolved.ID)
	})

	t.Run("no_cookie", func(t *testing.T) {
		_, err := a.CurrentUser(sessionRequest(""))
		assert.ErrorIs(t, err, ErrMissingSessionCookie)
	})

	t.Run("unknown_cookie", func(t *testing.T) {
		_, err := a.CurrentUser(sessionRequest("no-such-session"))
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestSessionDBAuth_DestroySession(t *testing.T) {
	ctx := context.Background()

	t.Run("destroy_then_redestroy", func(t *testing.T) {
		store := testutil.NewMockSessionRecordStore()
		a := newDBAuth(testutil.NewMockUserRepository(), store)

		sessionID, err := a.CreateSession(ctx, "user-123")
		require.NoError(t, err)

		req := sessionRequest(sessionID)
		assert.True(t, a.DestroySession(req))
		assert.False(t, a.DestroySession(req))

		_, err = store.GetBySessionID(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("nil_request", func(t *testing.T) {
		a := newDBAuth(testutil.NewMockUserRepository(), testutil.NewMockSessionRecordStore())
		assert.False(t, a.DestroySession(nil))
	})

	t.Run("no_cookie", func(t *testing.T) {
		a := newDBAuth(testutil.NewMockUserRepository(), testutil.NewMockSessionRecordStore())
		assert.False(t, a.DestroySession(sessionRequest("")))
	})
}
