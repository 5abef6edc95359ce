package ai

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no qualitative review could be produced.
var ErrUnavailable = errors.New("qualitative reviewer unavailable")

// Review is the qualitative commentary on how a resume fits a job description.
type Review struct {
	Strengths       []string `json:"strengths" mapstructure:"strengths"`
	Improvements    []string `json:"improvements" mapstructure:"improvements"`
	MissingKeywords []string `json:"missing_keywords" mapstructure:"missing_keywords"`
	Raw             string   `json:"-" mapstructure:"-"`
}

// Empty reports whether the review carries no commentary at all.
func (r *Review) Empty() bool {
	return r == nil || len(r.Strengths) == 0 && len(r.Improvements) == 0 && len(r.MissingKeywords) == 0
}

// Reviewer produces a qualitative review for normalized resume and job description text.
// Any returned error means the review is unavailable.
type Reviewer interface {
	Review(ctx context.Context, resume, jd string) (*Review, error)
}

// Nop is the reviewer used when no provider is configured.
type Nop struct{}

func (Nop) Review(context.Context, string, string) (*Review, error) {
	return nil, ErrUnavailable
}
