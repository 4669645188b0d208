package lexicon

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const minTokenLen = 3

var apostrophes = strings.NewReplacer("'", "", "’", "", "‘", "", "`", "")

// Normalize folds case, applies compatibility normalization and drops
// apostrophes so "Don’t" and "don't" compare equal.
func Normalize(text string) string {
	// Casers are stateful; never share one across goroutines.
	folded := cases.Fold().String(norm.NFKC.String(text))
	return apostrophes.Replace(folded)
}

// Words splits normalized text into word tokens. A percent sign is kept as
// a token of its own so "40%" yields "40" and "%".
func Words(text string) []string {
	s := Normalize(text)
	out := make([]string, 0, len(s)/5)
	start := -1
	for i, r := range s {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, s[start:i])
			start = -1
		}
		if r == '%' {
			out = append(out, "%")
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

// Tokenize returns the meaningful tokens of text: words of at least three
// characters that are not stopwords.
func Tokenize(text string) []string {
	words := Words(text)
	out := words[:0]
	for _, w := range words {
		if len([]rune(w)) < minTokenLen || IsStopword(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Stem strips one common English suffix, leaving short words alone.
func Stem(w string) string {
	switch {
	case len(w) > 5 && strings.HasSuffix(w, "ing"):
		return w[:len(w)-3]
	case len(w) > 4 && strings.HasSuffix(w, "ed"):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	}
	return w
}

// CountPhrase counts non-overlapping contiguous occurrences of phrase in words.
func CountPhrase(words []string, phrase Phrase) int {
	n := len(phrase.Tokens)
	if n == 0 {
		return 0
	}
	count := 0
	for i := 0; i+n <= len(words); {
		if matchAt(words, i, phrase.Tokens) {
			count++
			i += n
			continue
		}
		i++
	}
	return count
}

// ContainsPhrase reports whether phrase occurs in words at least once.
func ContainsPhrase(words []string, phrase Phrase) bool {
	n := len(phrase.Tokens)
	if n == 0 {
		return false
	}
	for i := 0; i+n <= len(words); i++ {
		if matchAt(words, i, phrase.Tokens) {
			return true
		}
	}
	return false
}

func matchAt(words []string, at int, tokens []string) bool {
	for j, t := range tokens {
		if words[at+j] != t {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
