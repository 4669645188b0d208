package model

import (
	"time"

	"github.com/okian/rehearse/internal/domain/attention"
	"github.com/okian/rehearse/internal/domain/lexicon"
	"github.com/okian/rehearse/internal/domain/relevance"
	"github.com/okian/rehearse/internal/domain/star"
	"github.com/okian/rehearse/internal/domain/textmetrics"
)

// Status is how a question ended.
type Status string

const (
	StatusAnswered Status = "answered"
	StatusSkipped  Status = "skipped"
	StatusTimeout  Status = "timeout"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusAnswered, StatusSkipped, StatusTimeout:
		return true
	}
	return false
}

// Grade is a letter grade.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionFinished SessionStatus = "finished"
)

// QuestionResult is the evaluation of one answered or skipped question.
type QuestionResult struct {
	ID              string              `json:"id"`
	Question        string              `json:"question"`
	Transcript      Transcript          `json:"transcript"`
	DurationSeconds float64             `json:"duration_seconds"`
	Status          Status              `json:"status"`
	TextMetrics     textmetrics.Metrics `json:"text_metrics"`
	Star            star.Analysis       `json:"star"`
	Attention       attention.Metrics   `json:"attention"`
	Relevance       relevance.Result    `json:"relevance"`
	Suggestions     []string            `json:"suggestions"`
	OverallScore    *int                `json:"overall_score,omitempty"`
	Grade           Grade               `json:"grade,omitempty"`
}

// Graded reports whether the composite has been computed.
func (q *QuestionResult) Graded() bool {
	return q.OverallScore != nil
}

// Clone returns a deep copy of q.
func (q QuestionResult) Clone() QuestionResult {
	q.TextMetrics.FillerBreakdown = append([]textmetrics.FillerCount{}, q.TextMetrics.FillerBreakdown...)
	q.Star.Missing = append([]string{}, q.Star.Missing...)
	q.Star.Suggestions = append([]string{}, q.Star.Suggestions...)
	q.Relevance = q.Relevance.Clone()
	q.Suggestions = append([]string{}, q.Suggestions...)
	if q.OverallScore != nil {
		v := *q.OverallScore
		q.OverallScore = &v
	}
	return q
}

// Aggregates are session wide means over answered questions.
type Aggregates struct {
	AvgWPM        int     `json:"avg_wpm"`
	AvgAttention  int     `json:"avg_attention"`
	AvgRelevance  int     `json:"avg_relevance"`
	StarMean      int     `json:"star_mean"`
	FillerPerMin  float64 `json:"filler_per_min"`
	AnsweredCount int     `json:"answered_count"`
	SkippedCount  int     `json:"skipped_count"`
}

// Overall is the final session summary.
type Overall struct {
	Score      int        `json:"score"`
	Grade      Grade      `json:"grade"`
	Summary    []string   `json:"summary"`
	Aggregates Aggregates `json:"aggregates"`
}

// SessionResult is the record of one mock interview.
type SessionResult struct {
	ID        string           `json:"id"`
	Role      lexicon.Role     `json:"role"`
	Skill     string           `json:"skill"`
	Status    SessionStatus    `json:"status"`
	StartedAt time.Time        `json:"started_at"`
	EndedAt   *time.Time       `json:"ended_at,omitempty"`
	Questions []QuestionResult `json:"questions"`
	Overall   *Overall         `json:"overall,omitempty"`

	// CurrentQuestion is the question awaiting an answer, if any.
	CurrentQuestion *lexicon.Question `json:"current_question,omitempty"`
	// Pending counts finalized answers still being graded.
	Pending         int               `json:"pending"`
}

// Clone returns a deep copy of s.
func (s SessionResult) Clone() SessionResult {
	qs := make([]QuestionResult, len(s.Questions))
	for i := range s.Questions {
		qs[i] = s.Questions[i].Clone()
	}
	s.Questions = qs
	if s.EndedAt != nil {
		t := *s.EndedAt
		s.EndedAt = &t
	}
	if s.CurrentQuestion != nil {
		cq := *s.CurrentQuestion
		s.CurrentQuestion = &cq
	}
	if s.Overall != nil {
		o := *s.Overall
		o.Summary = append([]string{}, o.Summary...)
		s.Overall = &o
	}
	return s
}
