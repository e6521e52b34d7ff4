package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// Named unique constraints this schema relies on.
const (
	usersEmailConstraint = "users_email_key"
)

// IsUniqueViolation checks if an error is a PostgreSQL unique constraint
// violation. With an empty constraint it matches any unique violation;
// otherwise only the named one.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	if string(pqErr.Code) != pqUniqueViolation {
		return false
	}

	if constraint == "" {
		return true
	}

	return pqErr.Constraint == constraint
}
