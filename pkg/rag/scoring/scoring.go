package scoring

import (
	"math"
	"regexp"
	"strings"
)

const (
	semanticWeight = 0.85
	lexicalWeight  = 0.15
)

var tokenPattern = regexp.MustCompile(`[a-z]{3,}`)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {},
	"this": {}, "that": {}, "your": {}, "you": {}, "are": {},
	"was": {}, "were": {}, "have": {}, "has": {}, "what": {},
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Zero-magnitude or mismatched vectors score 0.0 rather than erroring.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Keywords extracts the distinct lowercase keywords of a query, dropping
// short tokens and stopwords.
func Keywords(text string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)

	seen := make(map[string]struct{}, len(tokens))
	keywords := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return keywords
}

// LexicalScore returns the fraction of query keywords present in the
// chunk's own token set. No keywords means no lexical signal.
func LexicalScore(keywords []string, content string) float64 {
	if len(keywords) == 0 {
		return 0.0
	}

	contentTokens := tokenPattern.FindAllString(strings.ToLower(content), -1)
	contentSet := make(map[string]struct{}, len(contentTokens))
	for _, tok := range contentTokens {
		contentSet[tok] = struct{}{}
	}

	hits := 0
	for _, kw := range keywords {
		if _, ok := contentSet[kw]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

// Score blends the semantic and lexical signals into one ranking score.
func Score(semantic, lexical float64) float64 {
	return semanticWeight*semantic + lexicalWeight*lexical
}
