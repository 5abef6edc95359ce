// Package analysis runs the scoring pipeline for every candidate against one
// job description and ranks the outcome.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/ats-screener/internal/ai"
	"github.com/spigell/ats-screener/internal/logger"
	"github.com/spigell/ats-screener/internal/requirements"
	"github.com/spigell/ats-screener/internal/scoring"
	"github.com/spigell/ats-screener/internal/textutil"
)

// ErrCandidateTimeout is recorded for candidates whose analysis ran out of time.
var ErrCandidateTimeout = errors.New("candidate analysis timed out")

// Options configure an Analyzer. Zero values pick the defaults.
type Options struct {
	Weights          scoring.Weights
	Requirements     requirements.Config
	Workers          int
	CandidateTimeout time.Duration
	Reviewer         ai.Reviewer
	Logger           *zap.Logger
}

type Analyzer struct {
	weights  scoring.Weights
	miner    *requirements.Miner
	workers  int
	timeout  time.Duration
	reviewer ai.Reviewer
	logger   *zap.Logger
}

func New(opts Options) (*Analyzer, error) {
	if opts.Weights == (scoring.Weights{}) {
		opts.Weights = scoring.DefaultWeights()
	}
	if err := opts.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("scoring weights: %w", err)
	}
	if err := opts.Requirements.Validate(); err != nil {
		return nil, fmt.Errorf("requirements: %w", err)
	}
	if opts.CandidateTimeout < 0 {
		return nil, fmt.Errorf("candidate timeout must not be negative: %s", opts.CandidateTimeout)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Reviewer == nil {
		opts.Reviewer = ai.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	if !opts.Weights.Balanced() {
		opts.Logger.Warn("scoring weights do not sum to 1, combined scores are only clamped",
			zap.Float64("sum", opts.Weights.Sum()),
		)
	}

	return &Analyzer{
		weights:  opts.Weights,
		miner:    requirements.NewMiner(opts.Requirements),
		workers:  opts.Workers,
		timeout:  opts.CandidateTimeout,
		reviewer: opts.Reviewer,
		logger:   opts.Logger,
	}, nil
}

// Prepare normalizes a job description for repeated analysis.
func (a *Analyzer) Prepare(jd string) *Job {
	return NewJob(jd, a.miner)
}

// AnalyzeAll scores every candidate concurrently and returns the ranked leaderboard.
// Failures of single candidates are recorded in their results. An error is
// returned only when ctx itself is done.
func (a *Analyzer) AnalyzeAll(ctx context.Context, jd string, candidates []Candidate) (*Leaderboard, error) {
	runID := uuid.NewString()
	log := logger.WithRun(a.logger, runID)
	job := a.Prepare(jd)

	log.Info("analysis started",
		zap.Int("candidates", len(candidates)),
		zap.Int("hard_requirements", len(job.Requirements)),
		zap.Int("workers", a.workers),
	)

	results := make([]Result, len(candidates))
	g := new(errgroup.Group)
	g.SetLimit(a.workers)
	for i, candidate := range candidates {
		g.Go(func() error {
			results[i] = a.analyzeWithTimeout(ctx, log, job, candidate)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}

	Rank(results)

	board := &Leaderboard{
		RunID:          runID,
		GeneratedAt:    time.Now().UTC(),
		JobDescription: jd,
		Results:        results,
	}

	fields := []zap.Field{zap.Int("results", board.Len())}
	if top := board.Top(); top != nil {
		fields = append(fields, zap.String("top_match", top.Filename), zap.Float64("top_score", top.ATSScore))
	}
	log.Info("analysis finished", fields...)

	return board, nil
}

func (a *Analyzer) analyzeWithTimeout(ctx context.Context, log *zap.Logger, job *Job, candidate Candidate) Result {
	log = logger.WithCandidate(log, candidate.Filename)
	if a.timeout <= 0 {
		return a.analyze(ctx, log, job, candidate)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		done <- a.analyze(ctx, log, job, candidate)
	}()

	select {
	case result := <-done:
		return result
	case <-ctx.Done():
		log.Warn("candidate analysis timed out", zap.Duration("timeout", a.timeout))
		return failedResult(candidate.Filename, job.Requirements, ErrCandidateTimeout)
	}
}

// AnalyzeOne scores a single candidate against a prepared job.
func (a *Analyzer) AnalyzeOne(ctx context.Context, job *Job, candidate Candidate) Result {
	return a.analyzeWithTimeout(ctx, a.logger, job, candidate)
}

func (a *Analyzer) analyze(ctx context.Context, log *zap.Logger, job *Job, candidate Candidate) Result {
	if candidate.Err != nil {
		log.Warn("candidate skipped", zap.Error(candidate.Err))
		return failedResult(candidate.Filename, job.Requirements, candidate.Err)
	}

	resume := textutil.Normalize(candidate.Text)
	resumeTokens := textutil.KeywordSet(resume)

	components := scoring.ComponentScores{
		Semantic:         scoring.Semantic(resume, job.Text),
		Keyword:          scoring.Keyword(resumeTokens, job.Tokens),
		HardRequirements: scoring.HardRequirements(resumeTokens, job.Requirements),
	}

	result := Result{
		Filename:          candidate.Filename,
		ATSScore:          a.weights.Combine(components),
		Components:        components,
		HardRequirements:  job.Requirements,
		MissingKeywords:   MissingKeywords(resumeTokens, job.Tokens),
		Strengths:         []string{},
		QualitativeSource: SourceRules,
	}

	review, err := a.reviewer.Review(ctx, resume, job.Text)
	switch {
	case err == nil && !review.Empty():
		result.QualitativeSource = SourceCollaborator
		result.Strengths = textutil.Limit(review.Strengths, MaxStrengths)
		result.Improvements = textutil.Limit(review.Improvements, MaxImprovements)
		if len(review.MissingKeywords) > 0 {
			result.MissingKeywords = textutil.Limit(review.MissingKeywords, MaxMissingKeywords)
		}
	default:
		switch {
		case err == nil:
			log.Warn("qualitative review is empty, using rules")
		case err != ai.ErrUnavailable:
			log.Warn("qualitative review unavailable, using rules", zap.Error(err))
		}
		result.Improvements = RuleBasedImprovements(resume, job.Text, result.MissingKeywords)
	}

	log.Debug("candidate analyzed",
		zap.Float64("ats_score", result.ATSScore),
		zap.Float64("semantic_score", components.Semantic),
		zap.Float64("keyword_score", components.Keyword),
		zap.Float64("hard_requirements_score", components.HardRequirements),
		zap.String("qualitative_source", string(result.QualitativeSource)),
	)

	return result
}
