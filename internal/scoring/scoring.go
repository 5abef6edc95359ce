// Package scoring computes the similarity signals between a resume and a job
// description and combines them into a single ATS score.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/ats-screener/internal/textutil"
)

const (
	DefaultSemanticWeight        = 0.45
	DefaultKeywordWeight         = 0.35
	DefaultHardRequirementWeight = 0.20

	maxScore = 100.0
)

// ComponentScores holds the three signals, each in [0, 100].
type ComponentScores struct {
	Semantic         float64 `json:"semantic_score"`
	Keyword          float64 `json:"keyword_score"`
	HardRequirements float64 `json:"hard_requirements_score"`
}

// Weights of the combined score. They are applied as is, without re-normalization.
type Weights struct {
	Semantic         float64 `mapstructure:"semantic-weight"`
	Keyword          float64 `mapstructure:"keyword-weight"`
	HardRequirements float64 `mapstructure:"hard-requirement-weight"`
}

func DefaultWeights() Weights {
	return Weights{
		Semantic:         DefaultSemanticWeight,
		Keyword:          DefaultKeywordWeight,
		HardRequirements: DefaultHardRequirementWeight,
	}
}

func (w Weights) Validate() error {
	if w.Semantic < 0 || w.Keyword < 0 || w.HardRequirements < 0 {
		return fmt.Errorf("weights must not be negative: semantic=%g keyword=%g hard-requirement=%g",
			w.Semantic, w.Keyword, w.HardRequirements)
	}
	return nil
}

func (w Weights) Sum() float64 {
	return w.Semantic + w.Keyword + w.HardRequirements
}

// Balanced reports whether the weights add up to 1 within rounding error.
func (w Weights) Balanced() bool {
	return math.Abs(w.Sum()-1) < 1e-9
}

// Combine returns the weighted sum of the components clamped to [0, 100].
func (w Weights) Combine(c ComponentScores) float64 {
	return clamp(w.Semantic*c.Semantic + w.Keyword*c.Keyword + w.HardRequirements*c.HardRequirements)
}

// Semantic is the TF-IDF cosine similarity of the two texts scaled to [0, 100].
// Empty texts and texts without any usable term score 0.
func Semantic(resume, jd string) float64 {
	resume = textutil.Normalize(resume)
	jd = textutil.Normalize(jd)
	if resume == "" || jd == "" {
		return 0
	}

	vectors, ok := tfidf(resume, jd)
	if !ok {
		return 0
	}
	return clamp(cosine(vectors[0], vectors[1]) * maxScore)
}

// Keyword is the share of the job description vocabulary found in the resume.
func Keyword(resume, jd textutil.TokenSet) float64 {
	if resume.Len() == 0 || jd.Len() == 0 {
		return 0
	}
	return math.Min(maxScore, float64(resume.IntersectionLen(jd))/float64(jd.Len())*maxScore)
}

// HardRequirements is the share of requirements with at least one word present
// in the resume. No requirements means a score of 0.
func HardRequirements(resume textutil.TokenSet, requirements []string) float64 {
	if len(requirements) == 0 {
		return 0
	}

	hits := 0
	for _, req := range requirements {
		for _, word := range strings.Fields(strings.ToLower(req)) {
			if resume.Has(word) {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(requirements)) * maxScore
}

func clamp(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(maxScore, score))
}
