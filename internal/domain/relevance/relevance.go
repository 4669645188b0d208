// Package relevance decides whether an answer addresses the question that
// was asked. The local scorer is a deterministic lexical heuristic; an
// optional remote scorer can take precedence and always falls back to it.
package relevance

import (
	"context"

	"github.com/okian/rehearse/internal/domain/lexicon"
)

// Verdict thresholds. A score at or above OnTopicFrom is on topic; at or
// above PartialFrom is partially on topic.
const (
	OnTopicFrom = 60
	PartialFrom = 40
)

// MaxListed caps the matched and missing keyword lists.
const MaxListed = 10

// Verdict is the three way relevance classification.
type Verdict string

const (
	VerdictOnTopic  Verdict = "on_topic"
	VerdictPartial  Verdict = "partially_on_topic"
	VerdictOffTopic Verdict = "off_topic"
)

// Source records which scorer produced a result.
type Source string

const (
	SourceLocal         Source = "local"
	SourceRemote        Source = "remote"
	SourceLocalFallback Source = "local_fallback"
)

// VerdictFor maps a score to its verdict.
func VerdictFor(score int) Verdict {
	switch {
	case score >= OnTopicFrom:
		return VerdictOnTopic
	case score >= PartialFrom:
		return VerdictPartial
	default:
		return VerdictOffTopic
	}
}

// Input is what a scorer needs to judge one answer.
type Input struct {
	Transcript string
	Question   string
	Role       lexicon.Role
}

// Result is a relevance judgement.
type Result struct {
	Score           int      `json:"score"`
	Verdict         Verdict  `json:"verdict"`
	Reasons         []string `json:"reasons"`
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
	OffTopicMarkers []string `json:"off_topic_markers,omitempty"`
	Source          Source   `json:"source"`
}

// Clone returns a deep copy of r.
func (r Result) Clone() Result {
	r.Reasons = append([]string{}, r.Reasons...)
	r.MatchedKeywords = append([]string{}, r.MatchedKeywords...)
	r.MissingKeywords = append([]string{}, r.MissingKeywords...)
	r.OffTopicMarkers = append([]string(nil), r.OffTopicMarkers...)
	return r
}

// Scorer judges the relevance of an answer.
type Scorer interface {
	// Score honours ctx for cancellation where the implementation blocks.
	Score(ctx context.Context, in Input) (Result, error)
}

func capList(in []string) []string {
	if len(in) > MaxListed {
		in = in[:MaxListed]
	}
	return append([]string{}, in...)
}
