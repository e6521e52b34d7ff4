package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"authgate/internal/domain"
)

// userColumns is the set of columns FindBy and Update may touch. Anything
// outside it is a malformed query, reported as domain.ErrInvalidQuery so
// callers never mistake a broken query for a miss.
var userColumns = map[string]bool{
	"id":            true,
	"email":         true,
	"password_hash": true,
	"session_id":    true,
	"reset_token":   true,
}

// UserRepository implements domain.UserRepository for PostgreSQL
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user into the database
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.Email,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if IsUniqueViolation(err, usersEmailConstraint) {
			return domain.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindBy retrieves the first user matching all criteria.
// Returns domain.ErrInvalidQuery for empty criteria or unknown columns and
// domain.ErrUserNotFound when no row matches.
func (r *UserRepository) FindBy(ctx context.Context, criteria map[string]any) (*domain.User, error) {
	where, args, err := buildClauses(criteria, " AND ")
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, email, password_hash,
		       COALESCE(session_id, ''), COALESCE(reset_token, ''), created_at
		FROM users
		WHERE ` + where + `
		LIMIT 1
	`

	user := &domain.User{}
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.SessionID,
		&user.ResetToken,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// Update sets the given fields on the user identified by id.
// Returns domain.ErrInvalidQuery for unknown columns and
// domain.ErrUserNotFound when the user does not exist.
func (r *UserRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	set, args, err := buildClauses(fields, ", ")
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, set, len(args)+1)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// buildClauses turns a column/value map into "col = $n" fragments joined by
// sep, with columns sorted for deterministic SQL. Empty maps and unknown
// columns yield domain.ErrInvalidQuery.
func buildClauses(values map[string]any, sep string) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, domain.ErrInvalidQuery
	}

	columns := make([]string, 0, len(values))
	for column := range values {
		if !userColumns[column] {
			return "", nil, fmt.Errorf("%w: unknown column %q", domain.ErrInvalidQuery, column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	clauses := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for i, column := range columns {
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, i+1))
		args = append(args, values[column])
	}

	return strings.Join(clauses, sep), args, nil
}
