package filtering

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/ats-screener/internal/analysis"
)

// toggle carries the enable/disable state shared by all steps.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

func stepOf(initial int, removed []string, board *analysis.Leaderboard) Step {
	return Step{Initial: initial, Dropped: len(removed), Left: board.Len()}
}

type excludeFilter struct {
	toggle
	names []string
}

// NewExclude creates a filter that removes candidates listed in the configuration.
func NewExclude() Filter {
	return &excludeFilter{}
}

func (f *excludeFilter) Name() string { return "exclude" }

func (f *excludeFilter) Validate(cfg *Config) error {
	f.names = nil
	if cfg == nil {
		return nil
	}
	for _, name := range cfg.Exclude {
		if name = strings.TrimSpace(name); name != "" {
			f.names = append(f.names, name)
		}
	}
	return nil
}

func (f *excludeFilter) Apply(_ context.Context, deps Deps, board *analysis.Leaderboard) (*analysis.Leaderboard, Step, error) {
	initial := board.Len()
	if len(f.names) == 0 {
		return board, Step{Initial: initial, Left: initial}, nil
	}

	removed := board.Exclude(f.names)
	if len(removed) > 0 {
		deps.Logger.Info("excluding candidates from configuration",
			zap.Strings("excluded_candidates", removed),
			zap.Int("candidates_left", board.Len()),
		)
	}

	return board, stepOf(initial, removed, board), nil
}

func (f *excludeFilter) Status() Status {
	details := map[string]string{}
	if len(f.names) > 0 {
		details["candidates"] = strings.Join(f.names, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes candidates listed in a file,
// one name per line. Blank lines and lines starting with '#' are ignored.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, board *analysis.Leaderboard) (*analysis.Leaderboard, Step, error) {
	initial := board.Len()
	if f.path == "" {
		return board, Step{Initial: initial, Left: initial}, nil
	}

	names, err := readExcludeFile(f.path)
	if err != nil {
		return board, Step{}, fmt.Errorf("getting excluded candidates from file: %w", err)
	}

	removed := board.Exclude(names)
	if len(removed) > 0 {
		deps.Logger.Info("excluding candidates based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_candidates", removed),
			zap.Int("candidates_left", board.Len()),
		)
	}

	return board, stepOf(initial, removed, board), nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

func readExcludeFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, scanner.Err()
}

type failedFilter struct {
	toggle
}

// NewFailed creates a filter that removes candidates whose analysis failed.
func NewFailed() Filter {
	return &failedFilter{}
}

func (f *failedFilter) Name() string { return "failed" }

func (f *failedFilter) Validate(*Config) error { return nil }

func (f *failedFilter) Apply(_ context.Context, deps Deps, board *analysis.Leaderboard) (*analysis.Leaderboard, Step, error) {
	initial := board.Len()

	var failed []string
	for _, result := range board.Results {
		if result.Failed() {
			failed = append(failed, result.Filename)
		}
	}
	removed := board.Exclude(failed)
	if len(removed) > 0 {
		deps.Logger.Info("excluding candidates that could not be analyzed",
			zap.Strings("excluded_candidates", removed),
			zap.Int("candidates_left", board.Len()),
		)
	}

	return board, stepOf(initial, removed, board), nil
}

func (f *failedFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type minimumScoreFilter struct {
	toggle
	minimum float64
}

// NewMinimumScore creates a filter that removes candidates scoring under the configured minimum.
func NewMinimumScore() Filter {
	return &minimumScoreFilter{}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg == nil {
		return nil
	}
	if cfg.MinimumScore < 0 || cfg.MinimumScore > 100 {
		return fmt.Errorf("minimum score must be within [0, 100], got %g", cfg.MinimumScore)
	}
	f.minimum = cfg.MinimumScore
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, deps Deps, board *analysis.Leaderboard) (*analysis.Leaderboard, Step, error) {
	initial := board.Len()
	if f.minimum <= 0 {
		return board, Step{Initial: initial, Left: initial}, nil
	}

	removed := board.DropBelow(f.minimum)
	if len(removed) > 0 {
		deps.Logger.Info("excluding candidates below minimum score",
			zap.Float64("minimum_score", f.minimum),
			zap.Strings("excluded_candidates", removed),
			zap.Int("candidates_left", board.Len()),
		)
	}

	return board, stepOf(initial, removed, board), nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_score": strconv.FormatFloat(f.minimum, 'f', 1, 64)},
	}
}

type topFilter struct {
	toggle
	top int
}

// NewTop creates a filter that keeps only the best N candidates. Zero keeps everyone.
func NewTop() Filter {
	return &topFilter{}
}

func (f *topFilter) Name() string { return "top" }

func (f *topFilter) Validate(cfg *Config) error {
	f.top = 0
	if cfg == nil {
		return nil
	}
	if cfg.Top < 0 {
		return fmt.Errorf("top must not be negative, got %d", cfg.Top)
	}
	f.top = cfg.Top
	return nil
}

func (f *topFilter) Apply(_ context.Context, deps Deps, board *analysis.Leaderboard) (*analysis.Leaderboard, Step, error) {
	initial := board.Len()
	if f.top == 0 {
		return board, Step{Initial: initial, Left: initial}, nil
	}

	removed := board.KeepTop(f.top)
	if len(removed) > 0 {
		deps.Logger.Info("keeping only top candidates",
			zap.Int("top", f.top),
			zap.Strings("excluded_candidates", removed),
		)
	}

	return board, stepOf(initial, removed, board), nil
}

func (f *topFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"top": strconv.Itoa(f.top)},
	}
}
