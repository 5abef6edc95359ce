package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "non-positive limit", input: "Senior Go engineer", limit: 0, expect: ""},
		{name: "fits", input: "Go, SQL", limit: 10, expect: "Go, SQL"},
		{name: "cut with ellipsis", input: "Kubernetes operator", limit: 10, expect: "Kubernetes..."},
		{name: "multi-line resume", input: "Jane Doe\n\n  Skills:\n- Go\n- SQL", limit: 100, expect: "Jane Doe Skills: - Go - SQL"},
		{name: "no dangling space before ellipsis", input: "Go and Python", limit: 3, expect: "Go..."},
		{name: "counts runes", input: "Résumé écrit", limit: 6, expect: "Résumé..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
