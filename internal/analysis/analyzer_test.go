package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/ats-screener/internal/ai"
	"github.com/spigell/ats-screener/internal/scoring"
)

type fakeReviewer struct {
	review *ai.Review
	err    error
	calls  atomic.Int32
}

func (f *fakeReviewer) Review(context.Context, string, string) (*ai.Review, error) {
	f.calls.Add(1)
	return f.review, f.err
}

type blockingReviewer struct {
	release chan struct{}
}

func (b *blockingReviewer) Review(context.Context, string, string) (*ai.Review, error) {
	<-b.release
	return nil, ai.ErrUnavailable
}

func newAnalyzer(t *testing.T, opts Options) *Analyzer {
	t.Helper()
	a, err := New(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return a
}

func TestAnalyzeOneRequirementsCoverage(t *testing.T) {
	t.Parallel()

	a := newAnalyzer(t, Options{})
	job := a.Prepare("Requirements:\n- Python\n- SQL\n- Azure\n")

	if diff := cmp.Diff([]string{"Python", "SQL", "Azure"}, job.Requirements); diff != "" {
		t.Fatalf("unexpected requirements (-want +got):\n%s", diff)
	}

	result := a.AnalyzeOne(context.Background(), job, Candidate{
		Filename: "alice.txt",
		Text:     "Experienced Python developer with SQL and AWS.",
	})

	if got := math.Round(result.Components.HardRequirements*10) / 10; got != 66.7 {
		t.Fatalf("expected hard requirements score 66.7, got %v", result.Components.HardRequirements)
	}
	if diff := cmp.Diff([]string{"azure", "requirements"}, result.MissingKeywords); diff != "" {
		t.Fatalf("unexpected missing keywords (-want +got):\n%s", diff)
	}
	if result.QualitativeSource != SourceRules {
		t.Fatalf("expected rule based tips, got %q", result.QualitativeSource)
	}

	expectedTips := []string{
		"Expand experience details with measurable results (add metrics and scope).",
		"Add evidence of AZURE (projects, certifications, or achievements).",
		"Address missing keyword: 'azure'. Add relevant experience or training.",
		"Address missing keyword: 'requirements'. Add relevant experience or training.",
	}
	if diff := cmp.Diff(expectedTips, result.Improvements); diff != "" {
		t.Fatalf("unexpected improvements (-want +got):\n%s", diff)
	}

	expectedScore := scoring.DefaultWeights().Combine(result.Components)
	if result.ATSScore != expectedScore {
		t.Fatalf("expected combined score %v, got %v", expectedScore, result.ATSScore)
	}
}

func TestAnalyzeOneEmptyResume(t *testing.T) {
	t.Parallel()

	a := newAnalyzer(t, Options{})
	job := a.Prepare("Any text")

	if diff := cmp.Diff([]string{"text"}, job.Requirements); diff != "" {
		t.Fatalf("unexpected fallback requirements (-want +got):\n%s", diff)
	}

	result := a.AnalyzeOne(context.Background(), job, Candidate{Filename: "empty.txt"})
	if result.Components != (scoring.ComponentScores{}) {
		t.Fatalf("expected zero components, got %+v", result.Components)
	}
	if result.ATSScore != 0 {
		t.Fatalf("expected zero ats score, got %v", result.ATSScore)
	}
	if result.Failed() {
		t.Fatalf("empty resume must not be a failure: %s", result.Error)
	}
}

func TestAnalyzeOneUsesCollaborator(t *testing.T) {
	t.Parallel()

	strengths := make([]string, 12)
	for i := range strengths {
		strengths[i] = fmt.Sprintf("strength %d", i)
	}
	reviewer := &fakeReviewer{review: &ai.Review{
		Strengths:       strengths,
		Improvements:    []string{"Mention Azure"},
		MissingKeywords: []string{"azure"},
	}}

	a := newAnalyzer(t, Options{Reviewer: reviewer})
	job := a.Prepare("Requirements:\n- Python\n- Azure cloud")
	result := a.AnalyzeOne(context.Background(), job, Candidate{Filename: "bob.txt", Text: "Python"})

	if result.QualitativeSource != SourceCollaborator {
		t.Fatalf("expected collaborator source, got %q", result.QualitativeSource)
	}
	if len(result.Strengths) != MaxStrengths {
		t.Fatalf("expected %d strengths, got %d", MaxStrengths, len(result.Strengths))
	}
	if diff := cmp.Diff([]string{"Mention Azure"}, result.Improvements); diff != "" {
		t.Fatalf("unexpected improvements (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"azure"}, result.MissingKeywords); diff != "" {
		t.Fatalf("unexpected missing keywords (-want +got):\n%s", diff)
	}
}

func TestAnalyzeOneKeepsLocalMissingKeywordsWhenCollaboratorHasNone(t *testing.T) {
	t.Parallel()

	reviewer := &fakeReviewer{review: &ai.Review{Strengths: []string{"Python"}}}
	a := newAnalyzer(t, Options{Reviewer: reviewer})
	job := a.Prepare("Python and Kubernetes")

	result := a.AnalyzeOne(context.Background(), job, Candidate{Filename: "c.txt", Text: "Python"})
	if diff := cmp.Diff([]string{"kubernetes"}, result.MissingKeywords); diff != "" {
		t.Fatalf("unexpected missing keywords (-want +got):\n%s", diff)
	}
	if len(result.Improvements) != 0 {
		t.Fatalf("expected no improvements from collaborator, got %v", result.Improvements)
	}
}

func TestAnalyzeOneFallsBackWhenCollaboratorFails(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		reviewer *fakeReviewer
		warnings int
	}{
		{name: "error", reviewer: &fakeReviewer{err: errors.New("malformed response")}, warnings: 1},
		{name: "empty review", reviewer: &fakeReviewer{review: &ai.Review{}}, warnings: 1},
		{name: "unavailable", reviewer: &fakeReviewer{err: ai.ErrUnavailable}, warnings: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, observed := observer.New(zapcore.WarnLevel)
			a := newAnalyzer(t, Options{Reviewer: tt.reviewer, Logger: zap.New(core)})
			job := a.Prepare("Requirements:\n- Java")

			result := a.AnalyzeOne(context.Background(), job, Candidate{Filename: "d.txt", Text: "Go developer"})
			if result.QualitativeSource != SourceRules {
				t.Fatalf("expected rules source, got %q", result.QualitativeSource)
			}
			if len(result.Improvements) == 0 {
				t.Fatalf("expected rule based improvements")
			}
			if result.Failed() {
				t.Fatalf("collaborator failure must not fail the candidate")
			}
			if got := observed.Len(); got != tt.warnings {
				t.Fatalf("expected %d warnings, got %d", tt.warnings, got)
			}
		})
	}
}

func TestAnalyzeOneRecordsLoadError(t *testing.T) {
	t.Parallel()

	a := newAnalyzer(t, Options{})
	job := a.Prepare("Requirements:\n- Go")

	result := a.AnalyzeOne(context.Background(), job, Candidate{Filename: "cv.pdf", Err: errors.New("unsupported format")})
	if !result.Failed() || result.Error != "unsupported format" {
		t.Fatalf("expected load error to be recorded, got %q", result.Error)
	}
	if result.ATSScore != 0 {
		t.Fatalf("expected zero score, got %v", result.ATSScore)
	}
}

func TestAnalyzeOneTimeout(t *testing.T) {
	t.Parallel()

	reviewer := &blockingReviewer{release: make(chan struct{})}
	defer close(reviewer.release)

	a := newAnalyzer(t, Options{Reviewer: reviewer, CandidateTimeout: 10 * time.Millisecond})
	job := a.Prepare("Requirements:\n- Go")

	result := a.AnalyzeOne(context.Background(), job, Candidate{Filename: "slow.txt", Text: "Go"})
	if result.Error != ErrCandidateTimeout.Error() {
		t.Fatalf("expected timeout error, got %q", result.Error)
	}
	if result.ATSScore != 0 {
		t.Fatalf("expected zero score on timeout, got %v", result.ATSScore)
	}
}

func TestAnalyzeAllRanksAndPreservesTies(t *testing.T) {
	t.Parallel()

	reviewer := &fakeReviewer{err: ai.ErrUnavailable}
	a := newAnalyzer(t, Options{Workers: 2, Reviewer: reviewer})

	candidates := []Candidate{
		{Filename: "weak.txt", Text: "Pastry chef"},
		{Filename: "twin-b.txt", Text: "Go developer with Kubernetes"},
		{Filename: "strong.txt", Text: "Senior Go developer with Kubernetes and PostgreSQL"},
		{Filename: "twin-a.txt", Text: "Go developer with Kubernetes"},
		{Filename: "broken.pdf", Err: errors.New("unsupported format")},
	}

	board, err := a.AnalyzeAll(context.Background(), "Senior Go developer. Requirements:\n- Kubernetes\n- PostgreSQL", candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"strong.txt", "twin-b.txt", "twin-a.txt", "weak.txt", "broken.pdf"}
	if diff := cmp.Diff(expected, board.Filenames()); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}

	for i := 1; i < board.Len(); i++ {
		if board.Results[i-1].ATSScore < board.Results[i].ATSScore {
			t.Fatalf("leaderboard not sorted at %d", i)
		}
	}

	if board.RunID == "" {
		t.Fatalf("expected run id")
	}
	if got := reviewer.calls.Load(); got != 4 {
		t.Fatalf("expected reviewer to be called for 4 loaded candidates, got %d", got)
	}
}

func TestAnalyzeAllCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newAnalyzer(t, Options{})
	if _, err := a.AnalyzeAll(ctx, "Go", []Candidate{{Filename: "a.txt", Text: "Go"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAnalyzeAllLogsRunID(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	a := newAnalyzer(t, Options{Logger: zap.New(core)})

	board, err := a.AnalyzeAll(context.Background(), "Go", []Candidate{{Filename: "a.txt", Text: "Go"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	finished := observed.FilterMessage("analysis finished").All()
	if len(finished) != 1 {
		t.Fatalf("expected one finished entry, got %d", len(finished))
	}
	ctx := finished[0].ContextMap()
	if ctx["run_id"] != board.RunID || ctx["top_match"] != "a.txt" {
		t.Fatalf("unexpected fields: %+v", ctx)
	}
}

func TestNewValidatesOptions(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{Weights: scoring.Weights{Semantic: -1}}); err == nil {
		t.Fatalf("expected error for negative weight")
	}
	if _, err := New(Options{CandidateTimeout: -time.Second}); err == nil {
		t.Fatalf("expected error for negative timeout")
	}

	core, observed := observer.New(zapcore.WarnLevel)
	if _, err := New(Options{Weights: scoring.Weights{Semantic: 1, Keyword: 1}, Logger: zap.New(core)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if observed.Len() != 1 || !strings.Contains(observed.All()[0].Message, "do not sum to 1") {
		t.Fatalf("expected unbalanced weights warning")
	}
}
