package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"authgate/internal/domain"
)

// SessionRepository implements domain.SessionRecordStore for PostgreSQL.
// Records survive process restarts, which is what lets multiple processes
// share one session space.
type SessionRepository struct {
	db         *sql.DB
	createStmt *sql.Stmt
	getStmt    *sql.Stmt
}

// NewSessionRepository creates a new SessionRepository with prepared statements.
// Returns an error if statement preparation fails.
func NewSessionRepository(db *sql.DB) (*SessionRepository, error) {
	repo := &SessionRepository{db: db}

	var err error
	repo.createStmt, err = db.Prepare(`
		INSERT INTO user_sessions (user_id, session_id)
		VALUES ($1, $2)
		RETURNING created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare create statement: %w", err)
	}

	repo.getStmt, err = db.Prepare(`
		SELECT user_id, session_id, created_at
		FROM user_sessions
		WHERE session_id = $1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare get statement: %w", err)
	}

	return repo, nil
}

// Create persists a session record.
func (r *SessionRepository) Create(ctx context.Context, session *domain.UserSession) error {
	err := r.createStmt.QueryRowContext(ctx,
		session.UserID,
		session.SessionID,
	).Scan(&session.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetBySessionID retrieves a session record by its identifier.
// Returns domain.ErrSessionNotFound when no record matches.
func (r *SessionRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.UserSession, error) {
	session := &domain.UserSession{}
	err := r.getStmt.QueryRowContext(ctx, sessionID).Scan(
		&session.UserID,
		&session.SessionID,
		&session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// Delete removes a session record. The find-then-delete runs in one
// transaction so concurrent destroys of the same session cannot both
// report success.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var found string
		err := tx.QueryRowContext(ctx,
			`SELECT session_id FROM user_sessions WHERE session_id = $1 FOR UPDATE`,
			sessionID,
		).Scan(&found)
		if err == sql.ErrNoRows {
			return domain.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock session: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_sessions WHERE session_id = $1`, sessionID,
		); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	})
}
