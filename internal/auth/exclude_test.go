package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiresAuth(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		excluded []string
		want     bool
	}{
		{"empty_path", "", []string{"/api/v1/status"}, true},
		{"nil_excluded", "/api/v1/status", nil, true},
		{"empty_excluded", "/api/v1/status", []string{}, true},
		{"exact_match", "/api/v1/status", []string{"/api/v1/status"}, false},
		{"no_match", "/api/v1/users", []string{"/api/v1/status"}, true},
		{"path_trailing_slash", "/api/v1/status/", []string{"/api/v1/status"}, false},
		{"pattern_trailing_slash", "/api/v1/status", []string{"/api/v1/status/"}, false},
		{"both_trailing_slash", "/api/v1/status/", []string{"/api/v1/status/"}, false},
		{"wildcard_exact_prefix", "/api/v1/status", []string{"/api/v1/stat*"}, false},
		{"wildcard_deeper_path", "/api/v1/stats/x", []string{"/api/v1/stat*"}, false},
		{"wildcard_no_match", "/api/v1/other", []string{"/api/v1/stat*"}, true},
		{"wildcard_bare_prefix", "/api/v1/stat", []string{"/api/v1/stat*"}, false},
		{"empty_pattern_skipped", "/api/v1/status", []string{"", "/api/v1/status"}, false},
		{"only_empty_patterns", "/api/v1/status", []string{"", ""}, true},
		{"second_pattern_matches", "/api/v1/unauthorized", []string{"/api/v1/status", "/api/v1/unauthorized"}, false},
		{"root_path", "/", []string{"/"}, false},
		{"prefix_is_not_exact_match", "/api/v1/status/extra", []string{"/api/v1/status"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequiresAuth(tt.path, tt.excluded)
			assert.Equal(t, tt.want, got)
		})
	}
}
