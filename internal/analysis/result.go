package analysis

import (
	"github.com/spigell/ats-screener/internal/scoring"
)

// Source tells where the qualitative part of a result came from.
type Source string

const (
	SourceRules        Source = "rules"
	SourceCollaborator Source = "collaborator"
)

const (
	MaxMissingKeywords = 25
	MaxStrengths       = 10
	MaxImprovements    = 10
)

// Candidate is one resume to analyze. Err is set when its text could not be loaded.
type Candidate struct {
	Filename string
	Text     string
	Err      error
}

// Result is the analysis of a single candidate against the job description.
type Result struct {
	Filename          string                  `json:"filename"`
	ATSScore          float64                 `json:"ats_score"`
	Components        scoring.ComponentScores `json:"components"`
	HardRequirements  []string                `json:"hard_requirements"`
	MissingKeywords   []string                `json:"missing_keywords"`
	Strengths         []string                `json:"strengths"`
	Improvements      []string                `json:"improvements"`
	QualitativeSource Source                  `json:"qualitative_source"`
	Error             string                  `json:"error,omitempty"`
}

// Failed reports whether the candidate could not be analyzed.
func (r *Result) Failed() bool {
	return r.Error != ""
}

func failedResult(filename string, requirements []string, err error) Result {
	return Result{
		Filename:          filename,
		HardRequirements:  requirements,
		MissingKeywords:   []string{},
		Strengths:         []string{},
		Improvements:      []string{},
		QualitativeSource: SourceRules,
		Error:             err.Error(),
	}
}
