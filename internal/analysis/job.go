package analysis

import (
	"github.com/spigell/ats-screener/internal/requirements"
	"github.com/spigell/ats-screener/internal/textutil"
)

// Job is a job description prepared once and shared read-only by every candidate.
type Job struct {
	Raw          string
	Text         string
	Tokens       textutil.TokenSet
	Requirements []string
}

// NewJob normalizes the job description and mines its hard requirements.
// Mining runs on line-preserved text because bullets are matched per line.
func NewJob(jd string, miner *requirements.Miner) *Job {
	text := textutil.Normalize(jd)
	return &Job{
		Raw:          jd,
		Text:         text,
		Tokens:       textutil.KeywordSet(text),
		Requirements: miner.Extract(textutil.NormalizeLines(jd)),
	}
}
