package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/spigell/ats-screener/internal/textutil"
)

func TestMissingKeywords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		resume string
		jd     string
		expect []string
	}{
		{name: "short tokens are ignored", resume: "go", jd: "go sql aws azure kafka", expect: []string{"azure", "kafka"}},
		{name: "sorted", resume: "", jd: "zookeeper terraform ansible", expect: []string{"ansible", "terraform", "zookeeper"}},
		{name: "nothing missing", resume: "python django", jd: "Python", expect: []string{}},
		{name: "empty jd", resume: "python", jd: "", expect: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MissingKeywords(textutil.KeywordSet(tt.resume), textutil.KeywordSet(tt.jd))
			if diff := cmp.Diff(tt.expect, got); diff != "" {
				t.Fatalf("unexpected missing keywords (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMissingKeywordsCapped(t *testing.T) {
	t.Parallel()

	words := make([]string, 40)
	for i := range words {
		words[i] = fmt.Sprintf("skill%02d", i)
	}

	got := MissingKeywords(textutil.KeywordSet(""), textutil.KeywordSet(strings.Join(words, " ")))
	if len(got) != MaxMissingKeywords {
		t.Fatalf("expected %d keywords, got %d", MaxMissingKeywords, len(got))
	}
	if got[0] != "skill00" || got[24] != "skill24" {
		t.Fatalf("expected the lexically first keywords, got %v", got)
	}
}

func TestRuleBasedImprovements(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("Delivered measurable results in Python services. ", 20)

	tests := []struct {
		name    string
		resume  string
		jd      string
		missing []string
		expect  []string
	}{
		{
			name:   "long resume without gaps",
			resume: long,
			jd:     "Python services",
			expect: []string{},
		},
		{
			name:   "watch list uses substrings",
			resume: long,
			jd:     "Experience with JavaScript and GCP",
			expect: []string{
				"Add evidence of JAVA (projects, certifications, or achievements).",
				"Add evidence of GCP (projects, certifications, or achievements).",
			},
		},
		{
			name:    "duplicates collapse",
			resume:  "short",
			jd:      "",
			missing: []string{"kafka", "kafka"},
			expect: []string{
				"Expand experience details with measurable results (add metrics and scope).",
				"Address missing keyword: 'kafka'. Add relevant experience or training.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := RuleBasedImprovements(tt.resume, tt.jd, tt.missing)
			if diff := cmp.Diff(tt.expect, got); diff != "" {
				t.Fatalf("unexpected tips (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRuleBasedImprovementsCapped(t *testing.T) {
	t.Parallel()

	missing := make([]string, 20)
	for i := range missing {
		missing[i] = fmt.Sprintf("keyword%02d", i)
	}

	got := RuleBasedImprovements("short", "sql python", missing)
	if len(got) != MaxImprovements {
		t.Fatalf("expected %d tips, got %d", MaxImprovements, len(got))
	}
}
