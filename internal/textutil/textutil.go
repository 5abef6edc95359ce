// Package textutil holds the text primitives shared by the scoring engine:
// normalization, tokenization and token sets.
package textutil

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var tokenRe = regexp.MustCompile(`[a-z0-9+#\-.]+`)

// Normalize replaces NUL characters with spaces, collapses every whitespace run
// (newlines included) into a single space and trims the result.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(text, "\x00", " ")), " ")
}

// NormalizeLines is Normalize that keeps line structure: whitespace is collapsed
// inside each line, empty lines are dropped and lines are joined with "\n".
func NormalizeLines(text string) string {
	text = strings.ReplaceAll(text, "\x00", " ")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}

// Tokens lowercases text and returns the maximal runs of [a-z0-9+#-.] in order
// of appearance. Tokens like "c++", "c#" and "node.js" survive intact.
func Tokens(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

// TokenSet is a deduplicated set of lowercase tokens.
type TokenSet map[string]struct{}

// KeywordSet returns the TokenSet of text.
func KeywordSet(text string) TokenSet {
	return NewTokenSet(Tokens(text))
}

// NewTokenSet builds a set from the given tokens.
func NewTokenSet(tokens []string) TokenSet {
	set := make(TokenSet, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

func (s TokenSet) Len() int {
	return len(s)
}

func (s TokenSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// IntersectionLen counts the tokens present in both sets.
func (s TokenSet) IntersectionLen(other TokenSet) int {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}

	count := 0
	for token := range small {
		if large.Has(token) {
			count++
		}
	}
	return count
}

// Difference returns the tokens of s absent from other, sorted ascending.
func (s TokenSet) Difference(other TokenSet) []string {
	diff := make([]string, 0)
	for token := range s {
		if !other.Has(token) {
			diff = append(diff, token)
		}
	}
	sort.Strings(diff)
	return diff
}

// Sorted returns the members of the set in ascending order.
func (s TokenSet) Sorted() []string {
	return s.Difference(nil)
}

// RuneLen is the length of s in characters rather than bytes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Unique drops repeated entries, keeping the first occurrence of each.
func Unique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Limit returns at most n leading items of the slice. It never returns nil.
func Limit(items []string, n int) []string {
	if items == nil {
		return []string{}
	}
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
