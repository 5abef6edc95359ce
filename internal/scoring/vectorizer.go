package scoring

import (
	_ "embed"
	"math"
	"regexp"
	"sort"
	"strings"
)

//go:embed stopwords_en.txt
var stopWordsRaw string

var (
	stopWords = loadStopWords(stopWordsRaw)
	wordRe    = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)
)

func loadStopWords(raw string) map[string]struct{} {
	words := strings.Fields(raw)
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}

// terms lowercases text, drops English stop words and returns the unigrams
// followed by the bigrams of the remaining words.
func terms(text string) []string {
	var words []string
	for _, word := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if _, ok := stopWords[word]; ok {
			continue
		}
		words = append(words, word)
	}

	out := make([]string, 0, 2*len(words))
	out = append(out, words...)
	for i := 0; i+1 < len(words); i++ {
		out = append(out, words[i]+" "+words[i+1])
	}
	return out
}

// tfidf fits a vocabulary over docs and returns one L2-normalized dense vector
// per document, indexed by the sorted vocabulary. Term weights are raw counts
// times the smoothed idf ln((1+n)/(1+df))+1. ok is false when the vocabulary
// is empty.
func tfidf(docs ...string) (vectors [][]float64, ok bool) {
	counts := make([]map[string]float64, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		counts[i] = make(map[string]float64)
		for _, term := range terms(doc) {
			counts[i][term]++
		}
		for term := range counts[i] {
			df[term]++
		}
	}

	if len(df) == 0 {
		return nil, false
	}

	vocabulary := make([]string, 0, len(df))
	for term := range df {
		vocabulary = append(vocabulary, term)
	}
	sort.Strings(vocabulary)

	n := float64(len(docs))
	vectors = make([][]float64, len(docs))
	for i, count := range counts {
		vec := make([]float64, len(vocabulary))
		var norm float64
		for j, term := range vocabulary {
			idf := math.Log((1+n)/(1+float64(df[term]))) + 1
			vec[j] = count[term] * idf
			norm += vec[j] * vec[j]
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range vec {
				vec[j] /= norm
			}
		}
		vectors[i] = vec
	}

	return vectors, true
}

// cosine of two L2-normalized vectors of equal length.
func cosine(a, b []float64) float64 {
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}
