package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/ats-screener/internal/ai"
	"github.com/spigell/ats-screener/internal/logger"
	"github.com/spigell/ats-screener/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

//go:embed prompt.md
var systemPrompt string

//go:embed message.md
var messageTemplate string

const (
	DefaultMaxLogLength = 200
	DefaultTimeout      = 60 * time.Second
)

// Reviewer asks Gemini for strengths, improvements and missing keywords.
type Reviewer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
	timeout   time.Duration
}

var _ ai.Reviewer = (*Reviewer)(nil)

func NewReviewer(generator contentGenerator, logger *zap.Logger, maxLogLength int, timeout time.Duration) *Reviewer {
	if maxLogLength <= 0 {
		maxLogLength = DefaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Reviewer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
		timeout:   timeout,
	}
}

func (r *Reviewer) Review(ctx context.Context, resume, jd string) (*ai.Review, error) {
	if r == nil || r.generator == nil {
		return nil, ai.ErrUnavailable
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	message := buildMessage(resume, jd)

	r.logger.Debug("gemini review request",
		logger.AIRequestFields(r.generator.Model(), utf8.RuneCountInString(message), utils.TruncateForLog(message, r.maxLogLen))...,
	)

	raw, err := r.generator.GenerateContent(ctx, systemPrompt, message)
	if err != nil {
		return nil, fmt.Errorf("generate review: %w", err)
	}

	r.logger.Debug("gemini review response",
		logger.AIResponseFields(r.generator.Model(), utf8.RuneCountInString(raw), utils.TruncateForLog(raw, r.maxLogLen))...,
	)

	review, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	review.Raw = raw
	return review, nil
}

func buildMessage(resume, jd string) string {
	message := strings.ReplaceAll(messageTemplate, "{{RESUME}}", resume)
	return strings.ReplaceAll(message, "{{JOB_DESCRIPTION}}", jd)
}

func parseResponse(raw string) (*ai.Review, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: parse gemini response: %v", ai.ErrUnavailable, err)
	}

	var review ai.Review
	if err := mapstructure.WeakDecode(data, &review); err != nil {
		return nil, fmt.Errorf("%w: decode gemini response: %v", ai.ErrUnavailable, err)
	}

	review.Strengths = compact(review.Strengths)
	review.Improvements = compact(review.Improvements)
	review.MissingKeywords = compact(review.MissingKeywords)

	if review.Empty() {
		return nil, fmt.Errorf("%w: empty gemini review", ai.ErrUnavailable)
	}
	return &review, nil
}

// extractJSON strips code fences and keeps the outermost JSON object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return strings.TrimSpace(raw)
	}
	return raw[start : end+1]
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
