package relevance

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/okian/rehearse/internal/domain/lexicon"
	"github.com/okian/rehearse/internal/domain/similarity"
	"github.com/okian/rehearse/internal/domain/star"
)

// Scoring constants of the local heuristic.
const (
	MinMeaningfulTokens = 10
	ShortAnswerScore    = 40
	TopRoleKeywords     = 15

	rubricPointsEach   = 5
	rubricBonusCap     = 15
	rubricComponentMin = 50
	highRubricMin      = 75
	boostAllStrong     = 20
	boostTwoStrong     = 15
	boostStrongMean    = 10
	twoStrongMeanMin   = 60
	strongMeanMin      = 70

	offTopicPerMarker = 10
	offTopicCap       = 10
	vagueScale        = 100
	vagueCap          = 5

	keywordBoost     = 5
	keywordBoostFrom = 50
	strongCoverage   = 70
	lowSimilarity    = 20
	missingInReason  = 5
)

// Fixed reason strings.
const (
	ReasonEmpty         = "No answer was captured."
	ReasonTooShort      = "The answer is too short to judge relevance. Give a fuller response with specifics."
	ReasonLowSimilarity = "Little overlap with the wording of the question. Address the question more directly."
	ReasonRubricBonus   = "Clear task, action and result details strengthened relevance."
	ReasonVague         = "Vague or hedging language lowered the score."
	ReasonStrongTerms   = "Strong coverage of the expected technical terms."
	ReasonOnTopic       = "The answer addresses the question."
	ReasonOffTopic      = "The answer does not address the question."
	ReasonModerate      = "Moderate relevance to the question."
)

// LocalScorer is the deterministic heuristic scorer. It needs no network
// and never fails for a supported role.
type LocalScorer struct{}

// NewLocalScorer returns a LocalScorer.
func NewLocalScorer() *LocalScorer { return &LocalScorer{} }

// Score implements Scorer.
func (s *LocalScorer) Score(_ context.Context, in Input) (Result, error) {
	lx, err := lexicon.For(in.Role)
	if err != nil {
		return Result{}, err
	}
	return Evaluate(lx, in.Transcript, in.Question), nil
}

// Breakdown exposes the intermediate figures of a local evaluation.
type Breakdown struct {
	Similarity      float64
	Coverage        float64
	RubricBonus     int
	HighRubricBoost int
	KeywordBoost    int
	OffTopicPenalty int
	VaguePenalty    int
}

// Evaluate runs the local heuristic against lx.
func Evaluate(lx *lexicon.Lexicon, transcript, question string) Result {
	res, _ := evaluate(lx, transcript, question)
	return res
}

// Explain is Evaluate plus the intermediate figures. Short and empty
// answers return a zero Breakdown.
func Explain(lx *lexicon.Lexicon, transcript, question string) (Result, Breakdown) {
	return evaluate(lx, transcript, question)
}

func evaluate(lx *lexicon.Lexicon, transcript, question string) (Result, Breakdown) {
	words := lexicon.Words(transcript)
	required := RequiredKeywords(lx, question)
	markers := offTopicMarkers(words)

	if len(words) == 0 {
		return Result{
			Score:           0,
			Verdict:         VerdictOffTopic,
			Reasons:         []string{ReasonEmpty},
			MatchedKeywords: []string{},
			MissingKeywords: capList(texts(required)),
			Source:          SourceLocal,
		}, Breakdown{}
	}
	if len(lexicon.Tokenize(transcript)) < MinMeaningfulTokens {
		return Result{
			Score:           ShortAnswerScore,
			Verdict:         VerdictFor(ShortAnswerScore),
			Reasons:         []string{ReasonTooShort},
			MatchedKeywords: []string{},
			MissingKeywords: capList(texts(required)),
			OffTopicMarkers: markers,
			Source:          SourceLocal,
		}, Breakdown{}
	}

	var b Breakdown
	b.Similarity = similarity.Combined(transcript, question)

	vocab := newVocabulary(lx, words)
	var matched, missing []string
	for _, kw := range required {
		if vocab.covers(kw) {
			matched = append(matched, kw.Text)
		} else {
			missing = append(missing, kw.Text)
		}
	}
	if len(required) > 0 {
		b.Coverage = 100 * float64(len(matched)) / float64(len(required))
	}

	scores := star.Analyze(transcript).Scores
	b.RubricBonus = RubricBonus(scores)
	b.HighRubricBoost = HighRubricBoost(scores)

	b.OffTopicPenalty = min(len(markers)*offTopicPerMarker, offTopicCap)
	b.VaguePenalty = min(int(math.Round(vagueRatio(words)*vagueScale)), vagueCap)
	if b.Coverage >= keywordBoostFrom {
		b.KeywordBoost = keywordBoost
	}

	raw := 0.5*b.Similarity + 0.5*b.Coverage +
		float64(b.RubricBonus+b.HighRubricBoost+b.KeywordBoost-b.OffTopicPenalty-b.VaguePenalty)
	score := int(math.Round(math.Max(0, math.Min(100, raw))))
	verdict := VerdictFor(score)

	return Result{
		Score:           score,
		Verdict:         verdict,
		Reasons:         reasons(b, verdict, missing, markers),
		MatchedKeywords: capList(matched),
		MissingKeywords: capList(missing),
		OffTopicMarkers: markers,
		Source:          SourceLocal,
	}, b
}

// RequiredKeywords is the union of the question's content words and the
// role's leading keywords, without duplicates, in that order.
func RequiredKeywords(lx *lexicon.Lexicon, question string) []lexicon.Phrase {
	seen := make(map[string]struct{})
	var out []lexicon.Phrase
	add := func(p lexicon.Phrase) {
		key := strings.Join(p.Tokens, " ")
		if key == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	for _, w := range lexicon.QuestionKeywords(question) {
		add(lexicon.Phrase{Text: w, Tokens: []string{w}})
	}
	for _, p := range lx.TopKeywords(TopRoleKeywords) {
		add(p)
	}
	return out
}

// RubricBonus awards points for each of Task, Action and Result above 50.
func RubricBonus(s star.Scores) int {
	n := 0
	for _, v := range []int{s.T, s.A, s.R} {
		if v > rubricComponentMin {
			n++
		}
	}
	return min(n*rubricPointsEach, rubricBonusCap)
}

// HighRubricBoost returns the single highest boost tier satisfied by s.
func HighRubricBoost(s star.Scores) int {
	strong := 0
	for _, v := range []int{s.S, s.T, s.A, s.R} {
		if v >= highRubricMin {
			strong++
		}
	}
	mean := s.Mean()
	switch {
	case strong >= 3:
		return boostAllStrong
	case strong == 2 && mean >= twoStrongMeanMin:
		return boostTwoStrong
	case mean >= strongMeanMin:
		return boostStrongMean
	default:
		return 0
	}
}

func reasons(b Breakdown, v Verdict, missing, markers []string) []string {
	var out []string
	if b.Similarity < lowSimilarity {
		out = append(out, ReasonLowSimilarity)
	}
	if b.Coverage < keywordBoostFrom && len(missing) > 0 {
		n := min(len(missing), missingInReason)
		out = append(out, "Missing key terms: "+strings.Join(missing[:n], ", ")+".")
	}
	if b.RubricBonus > 0 {
		out = append(out, ReasonRubricBonus)
	}
	if len(markers) > 0 {
		quoted := make([]string, len(markers))
		for i, m := range markers {
			quoted[i] = fmt.Sprintf("%q", m)
		}
		out = append(out, "Off-topic markers found: "+strings.Join(quoted, ", ")+".")
	}
	if b.VaguePenalty > 0 {
		out = append(out, ReasonVague)
	}
	if b.Coverage >= strongCoverage {
		out = append(out, ReasonStrongTerms)
	}
	switch v {
	case VerdictOnTopic:
		out = append(out, ReasonOnTopic)
	case VerdictOffTopic:
		out = append(out, ReasonOffTopic)
	}
	if len(out) == 0 {
		out = append(out, ReasonModerate)
	}
	return out
}

func offTopicMarkers(words []string) []string {
	var out []string
	for _, p := range lexicon.OffTopicPhrases() {
		if lexicon.ContainsPhrase(words, p) {
			out = append(out, p.Text)
		}
	}
	for _, p := range lexicon.UnrelatedTopics() {
		if lexicon.ContainsPhrase(words, p) {
			out = append(out, p.Text)
		}
	}
	return out
}

// vagueRatio is the fraction of words that belong to a vague phrase.
func vagueRatio(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	covered := 0
	for _, p := range lexicon.VaguePhrases() {
		covered += lexicon.CountPhrase(words, p) * len(p.Tokens)
	}
	return math.Min(1, float64(covered)/float64(len(words)))
}

func texts(ps []lexicon.Phrase) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Text
	}
	return out
}

// vocabulary answers whether a keyword token is present in a transcript,
// directly, by stem or through a synonym group.
type vocabulary struct {
	lx    *lexicon.Lexicon
	words map[string]struct{}
	stems map[string]struct{}
}

func newVocabulary(lx *lexicon.Lexicon, words []string) *vocabulary {
	v := &vocabulary{
		lx:    lx,
		words: make(map[string]struct{}, len(words)),
		stems: make(map[string]struct{}, len(words)),
	}
	for _, w := range words {
		v.words[w] = struct{}{}
		v.stems[lexicon.Stem(w)] = struct{}{}
	}
	return v
}

func (v *vocabulary) covers(kw lexicon.Phrase) bool {
	for _, t := range kw.Tokens {
		if !v.has(t) {
			return false
		}
	}
	return len(kw.Tokens) > 0
}

func (v *vocabulary) has(token string) bool {
	if v.present(token) {
		return true
	}
	for _, rel := range v.lx.Related(token) {
		if v.present(rel) {
			return true
		}
	}
	return false
}

func (v *vocabulary) present(token string) bool {
	if _, ok := v.words[token]; ok {
		return true
	}
	_, ok := v.stems[lexicon.Stem(token)]
	return ok
}
