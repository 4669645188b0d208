package grading

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/rehearse/internal/domain/attention"
	"github.com/okian/rehearse/internal/domain/model"
	"github.com/okian/rehearse/internal/domain/relevance"
	"github.com/okian/rehearse/internal/domain/star"
	"github.com/okian/rehearse/internal/domain/textmetrics"
	"github.com/okian/rehearse/pkg/logger"
	"github.com/okian/rehearse/pkg/metrics"
)

// ReasonSkipped is the relevance reason recorded for skipped questions.
const ReasonSkipped = "The question was skipped."

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// Evaluator runs every analyzer over a finalized answer and grades it.
type Evaluator struct {
	relevance relevance.Scorer
	logger    logger.Logger
}

// NewEvaluator returns an Evaluator that judges relevance with scorer.
func NewEvaluator(scorer relevance.Scorer, opts ...Option) *Evaluator {
	e := &Evaluator{
		relevance: scorer,
		logger:    logger.Get().Named("evaluator"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate produces a graded QuestionResult. The only error is a
// relevance configuration fault such as an unsupported role.
func (e *Evaluator) Evaluate(ctx context.Context, a model.Answer) (model.QuestionResult, error) {
	start := time.Now()
	defer func() {
		metrics.RecordEvaluationLatency(float64(time.Since(start).Milliseconds()))
	}()

	status := a.Status
	if status == "" {
		status = model.StatusAnswered
	}
	if !status.Valid() {
		return model.QuestionResult{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	text := string(a.Transcript)
	q := model.QuestionResult{
		ID:              a.QuestionID,
		Question:        a.Question,
		Transcript:      a.Transcript,
		DurationSeconds: a.DurationSeconds,
		Status:          status,
		TextMetrics:     textmetrics.Analyze(text, a.DurationSeconds),
		Star:            star.Analyze(text),
		Attention:       attention.Analyze(a.HeadVariance, a.GazeDrift),
	}

	if status == model.StatusSkipped {
		q.Relevance = relevance.Result{
			Verdict:         relevance.VerdictOffTopic,
			Reasons:         []string{ReasonSkipped},
			MatchedKeywords: []string{},
			MissingKeywords: []string{},
			Source:          relevance.SourceLocal,
		}
		q.Suggestions = []string{}
	} else {
		res, err := e.relevance.Score(ctx, relevance.Input{
			Transcript: text,
			Question:   a.Question,
			Role:       a.Role,
		})
		if err != nil {
			metrics.RecordEvaluationError()
			return model.QuestionResult{}, fmt.Errorf("score relevance: %w", err)
		}
		q.Relevance = res
		q.Suggestions = append(textmetrics.Suggestions(q.TextMetrics), attention.Suggestions(q.Attention)...)
	}

	score, grade := Grade(&q)
	metrics.RecordAnswerGraded(string(status), string(grade))
	e.logger.Debug(ctx, "answer graded",
		logger.String("question", a.QuestionID),
		logger.String("status", string(status)),
		logger.Int("score", score),
		logger.String("grade", string(grade)),
		logger.String("relevance_source", string(q.Relevance.Source)),
	)
	return q, nil
}
