// Package similarity provides lexical overlap measures between two texts.
// There is no semantic model behind these numbers; they only compare tokens.
package similarity

import (
	"strings"

	"github.com/okian/rehearse/internal/domain/lexicon"
)

// Weights of the combined score.
const (
	WeightTokenSet = 0.5
	WeightBigram   = 0.3
	WeightPartial  = 0.2
)

// minPartialLen guards substring matches against short accidental hits.
const minPartialLen = 4

// Combined returns a 0-100 overlap score between text and reference using
// the meaningful tokens of each.
func Combined(text, reference string) float64 {
	a := lexicon.Tokenize(text)
	b := lexicon.Tokenize(reference)
	return 100 * (WeightTokenSet*TokenSetJaccard(a, b) +
		WeightBigram*BigramJaccard(a, b) +
		WeightPartial*PartialRatio(a, b))
}

// TokenSetJaccard is |A∩B| / |A∪B| over distinct tokens.
func TokenSetJaccard(a, b []string) float64 {
	return jaccard(set(a), set(b))
}

// BigramJaccard is the Jaccard index over adjacent token pairs.
func BigramJaccard(a, b []string) float64 {
	return jaccard(set(bigrams(a)), set(bigrams(b)))
}

// PartialRatio is the share of distinct reference tokens found in tokens,
// either exactly or as a substring of at least four characters in either
// direction.
func PartialRatio(tokens, reference []string) float64 {
	ref := set(reference)
	if len(ref) == 0 {
		return 0
	}
	have := set(tokens)
	hit := 0
	for r := range ref {
		if _, ok := have[r]; ok {
			hit++
			continue
		}
		for t := range have {
			if partialMatch(t, r) {
				hit++
				break
			}
		}
	}
	return float64(hit) / float64(len(ref))
}

func partialMatch(a, b string) bool {
	if len(a) < minPartialLen || len(b) < minPartialLen {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func bigrams(tokens []string) []string {
	if len(tokens) < 2 {
		return nil
	}
	out := make([]string, 0, len(tokens)-1)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

func set(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
