// Package requirements mines "must have" qualification phrases from job descriptions.
package requirements

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/spigell/ats-screener/internal/textutil"
)

const (
	DefaultWindowSize        = 1000
	DefaultMaxRequirements   = 20
	DefaultFallbackCount     = 10
	DefaultFallbackMinLength = 4
)

// DefaultHeadings are the phrases that open a requirements section.
var DefaultHeadings = []string{
	"must have",
	"requirements",
	"qualifications",
	"required",
	"you must",
	"need to have",
}

var bulletRe = regexp.MustCompile(`(?m)^[-*\x{2022}]\s*(.+)`)

// Config tunes the miner. Zero values fall back to the defaults.
type Config struct {
	Headings          []string `mapstructure:"headings"`
	WindowSize        int      `mapstructure:"window-size"`
	MaxRequirements   int      `mapstructure:"max-requirements"`
	FallbackCount     int      `mapstructure:"fallback-count"`
	FallbackMinLength int      `mapstructure:"fallback-min-length"`
}

// DefaultConfig returns the stock miner settings.
func DefaultConfig() Config {
	return Config{
		Headings:          append([]string(nil), DefaultHeadings...),
		WindowSize:        DefaultWindowSize,
		MaxRequirements:   DefaultMaxRequirements,
		FallbackCount:     DefaultFallbackCount,
		FallbackMinLength: DefaultFallbackMinLength,
	}
}

func (c Config) Validate() error {
	if c.WindowSize < 0 {
		return fmt.Errorf("window size must not be negative: %d", c.WindowSize)
	}
	if c.MaxRequirements < 0 {
		return fmt.Errorf("max requirements must not be negative: %d", c.MaxRequirements)
	}
	if c.FallbackCount < 0 {
		return fmt.Errorf("fallback count must not be negative: %d", c.FallbackCount)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if len(c.Headings) == 0 {
		c.Headings = DefaultHeadings
	}
	if c.WindowSize == 0 {
		c.WindowSize = DefaultWindowSize
	}
	if c.MaxRequirements == 0 {
		c.MaxRequirements = DefaultMaxRequirements
	}
	if c.FallbackCount == 0 {
		c.FallbackCount = DefaultFallbackCount
	}
	if c.FallbackMinLength == 0 {
		c.FallbackMinLength = DefaultFallbackMinLength
	}
	return c
}

// Miner extracts hard requirements from job description text.
type Miner struct {
	cfg      Config
	headings [][]rune
}

func NewMiner(cfg Config) *Miner {
	cfg = cfg.withDefaults()

	headings := make([][]rune, 0, len(cfg.Headings))
	for _, heading := range cfg.Headings {
		heading = strings.TrimSpace(heading)
		if heading == "" {
			continue
		}
		headings = append(headings, lowerRunes(heading))
	}

	return &Miner{cfg: cfg, headings: headings}
}

// Extract returns up to MaxRequirements phrases. For the first occurrence of
// each heading a window of WindowSize characters is scanned for bullet lines.
// Without any bullet the first FallbackCount distinct long tokens of the whole
// text stand in as pseudo-requirements. An empty result is valid.
//
// Bullets are matched per line, so the text should keep its line breaks
// (see textutil.NormalizeLines). Original casing is preserved.
func (m *Miner) Extract(jd string) []string {
	original := []rune(jd)
	lowered := lowerRunes(jd)

	var bullets []string
	for _, heading := range m.headings {
		idx := indexRunes(lowered, heading)
		if idx < 0 {
			continue
		}

		end := min(idx+m.cfg.WindowSize, len(original))
		window := string(original[idx:end])
		for _, match := range bulletRe.FindAllStringSubmatch(window, -1) {
			bullets = append(bullets, match[1])
		}
	}

	if len(bullets) == 0 {
		bullets = m.fallback(jd)
	}

	cleaned := make([]string, 0, len(bullets))
	for _, bullet := range bullets {
		if req := clean(bullet); req != "" {
			cleaned = append(cleaned, req)
		}
	}

	return textutil.Limit(cleaned, m.cfg.MaxRequirements)
}

func (m *Miner) fallback(jd string) []string {
	candidates := make([]string, 0, m.cfg.FallbackCount)
	seen := make(map[string]struct{})
	for _, token := range textutil.Tokens(jd) {
		if len(candidates) >= m.cfg.FallbackCount {
			break
		}
		if textutil.RuneLen(token) < m.cfg.FallbackMinLength {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		candidates = append(candidates, token)
	}
	return candidates
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".;:,")
	return strings.TrimSpace(s)
}

// lowerRunes lowercases rune by rune so offsets match the original text.
func lowerRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if haystack[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}

// Extract mines requirements with the default configuration.
func Extract(jd string) []string {
	return NewMiner(DefaultConfig()).Extract(jd)
}
