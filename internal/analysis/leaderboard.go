package analysis

import (
	"encoding/json"
	"io"
	"os"
	"slices"
	"time"
)

// Leaderboard is the ranked outcome of one analysis run.
type Leaderboard struct {
	RunID          string
	GeneratedAt    time.Time
	JobDescription string
	Results        []Result
}

// Report is the serialized form of a leaderboard.
type Report struct {
	RunID          string    `json:"run_id"`
	GeneratedAt    time.Time `json:"generated_at"`
	JobDescription string    `json:"job_description"`
	TopMatch       string    `json:"top_match,omitempty"`
	Results        []Result  `json:"results"`
}

func (l *Leaderboard) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Results)
}

// Top returns the best match or nil for an empty leaderboard.
func (l *Leaderboard) Top() *Result {
	if l.Len() == 0 {
		return nil
	}
	return &l.Results[0]
}

func (l *Leaderboard) FindByFilename(filename string) *Result {
	if l == nil {
		return nil
	}
	for i := range l.Results {
		if l.Results[i].Filename == filename {
			return &l.Results[i]
		}
	}
	return nil
}

func (l *Leaderboard) Filenames() []string {
	if l == nil {
		return nil
	}
	names := make([]string, 0, len(l.Results))
	for _, result := range l.Results {
		names = append(names, result.Filename)
	}
	return names
}

// Exclude drops the results with the given filenames and returns the removed names.
func (l *Leaderboard) Exclude(filenames []string) []string {
	return l.removeWhere(func(r Result) bool {
		return slices.Contains(filenames, r.Filename)
	})
}

// DropBelow removes the results scoring under minimum.
func (l *Leaderboard) DropBelow(minimum float64) []string {
	return l.removeWhere(func(r Result) bool {
		return r.ATSScore < minimum
	})
}

// KeepTop truncates the leaderboard to its first n results.
func (l *Leaderboard) KeepTop(n int) []string {
	if l == nil || n < 0 || len(l.Results) <= n {
		return nil
	}
	removed := make([]string, 0, len(l.Results)-n)
	for _, result := range l.Results[n:] {
		removed = append(removed, result.Filename)
	}
	l.Results = l.Results[:n]
	return removed
}

func (l *Leaderboard) removeWhere(drop func(Result) bool) []string {
	if l == nil {
		return nil
	}
	var removed []string
	kept := l.Results[:0]
	for _, result := range l.Results {
		if drop(result) {
			removed = append(removed, result.Filename)
			continue
		}
		kept = append(kept, result)
	}
	l.Results = kept
	return removed
}

func (l *Leaderboard) Report() Report {
	report := Report{
		RunID:          l.RunID,
		GeneratedAt:    l.GeneratedAt,
		JobDescription: l.JobDescription,
		Results:        l.Results,
	}
	if report.Results == nil {
		report.Results = []Result{}
	}
	if top := l.Top(); top != nil {
		report.TopMatch = top.Filename
	}
	return report
}

// WriteJSON encodes the report as indented JSON.
func (l *Leaderboard) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l.Report())
}

func (l *Leaderboard) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "ats_report_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := l.WriteJSON(file); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func (l *Leaderboard) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	return l.WriteJSON(file)
}
