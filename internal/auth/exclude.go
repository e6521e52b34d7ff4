package auth

import "strings"

// RequiresAuth reports whether path is subject to authentication given the
// configured excluded path patterns. It fails closed: an empty path or an
// empty pattern set always requires auth.
//
// Paths and patterns are compared with trailing slashes stripped, so
// "/api/v1/status" and "/api/v1/status/" are equivalent. A pattern ending
// in "*" matches any path starting with the literal prefix before the "*".
// Empty entries in the pattern list are skipped.
func RequiresAuth(path string, excludedPaths []string) bool {
	if path == "" || len(excludedPaths) == 0 {
		return true
	}

	normalized := strings.TrimRight(path, "/")

	for _, pattern := range excludedPaths {
		if pattern == "" {
			continue
		}
		pattern = strings.TrimRight(pattern, "/")

		if strings.HasSuffix(pattern, "*") {
			if strings.HasPrefix(normalized, strings.TrimSuffix(pattern, "*")) {
				return false
			}
		} else if normalized == pattern {
			return false
		}
	}

	return true
}
