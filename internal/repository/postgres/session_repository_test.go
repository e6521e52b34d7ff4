package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"authgate/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSessionRepositoryMocks(mock sqlmock.Sqlmock) {
	mock.ExpectPrepare(regexp.QuoteMeta(`
		INSERT INTO user_sessions (user_id, session_id)
		VALUES ($1, $2)
		RETURNING created_at
	`))
	mock.ExpectPrepare(regexp.QuoteMeta(`
		SELECT user_id, session_id, created_at
		FROM user_sessions
		WHERE session_id = $1
	`))
}

func newSessionRepo(t *testing.T) (*SessionRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	setupSessionRepositoryMocks(mock)
	repo, err := NewSessionRepository(db)
	require.NoError(t, err)

	return repo, mock, func() { db.Close() }
}

func TestNewSessionRepository(t *testing.T) {
	t.Run("successful_creation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		setupSessionRepositoryMocks(mock)

		repo, err := NewSessionRepository(db)
		require.NoError(t, err)
		assert.NotNil(t, repo)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails_when_prepare_create_fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPrepare(regexp.QuoteMeta(`
		INSERT INTO user_sessions (user_id, session_id)
		VALUES ($1, $2)
		RETURNING created_at
	`)).WillReturnError(errors.New("prepare failed"))

		repo, err := NewSessionRepository(db)
		require.Error(t, err)
		assert.Nil(t, repo)
		assert.Contains(t, err.Error(), "failed to prepare create statement")
	})
}

func TestSessionRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("successful_creation", func(t *testing.T) {
		repo, mock, cleanup := newSessionRepo(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO user_sessions`)).
			WithArgs("user-1", "session-abc").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		session := &domain.UserSession{UserID: "user-1", SessionID: "session-abc"}
		require.NoError(t, repo.Create(ctx, session))
		assert.False(t, session.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database_error", func(t *testing.T) {
		repo, mock, cleanup := newSessionRepo(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO user_sessions`)).
			WillReturnError(errors.New("connection reset"))

		err := repo.Create(ctx, &domain.UserSession{UserID: "user-1", SessionID: "session-abc"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create session")
	})
}

func TestSessionRepository_GetBySessionID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo, mock, cleanup := newSessionRepo(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, session_id, created_at`)).
			WithArgs("session-abc").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "session_id", "created_at"}).
				AddRow("user-1", "session-abc", time.Now()))

		session, err := repo.GetBySessionID(ctx, "session-abc")
		require.NoError(t, err)
		assert.Equal(t, "user-1", session.UserID)
		assert.Equal(t, "session-abc", session.SessionID)
	})

	t.Run("not_found", func(t *testing.T) {
		repo, mock, cleanup := newSessionRepo(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, session_id, created_at`)).
			WithArgs("no-such-session").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetBySessionID(ctx, "no-such-session")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestSessionRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes_in_transaction", func(t *testing.T) {
		repo, mock, cleanup := newSessionRepo(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT session_id FROM user_sessions WHERE session_id = $1 FOR UPDATE`)).
			WithArgs("session-abc").
			WillReturnRows(sqlmock.NewRows([]string{"session_id"}).AddRow("session-abc"))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM user_sessions WHERE session_id = $1`)).
			WithArgs("session-abc").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(ctx, "session-abc"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not_found_rolls_back", func(t *testing.T) {
		repo, mock, cleanup := newSessionRepo(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT session_id FROM user_sessions WHERE session_id = $1 FOR UPDATE`)).
			WithArgs("no-such-session").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := repo.Delete(ctx, "no-such-session")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
