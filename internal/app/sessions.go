package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/rehearse/internal/adapters/mq/queue"
	"github.com/okian/rehearse/internal/domain/dedupe"
	"github.com/okian/rehearse/internal/domain/lexicon"
	"github.com/okian/rehearse/internal/domain/model"
	"github.com/okian/rehearse/internal/domain/session"
	"github.com/okian/rehearse/pkg/logger"
	"github.com/okian/rehearse/pkg/metrics"
)

// CreateSessionRequest selects a role and its questions. QuestionIDs wins
// over QuestionCount; with neither the default count is used.
type CreateSessionRequest struct {
	Role          string   `json:"role"`
	QuestionCount int      `json:"question_count,omitempty"`
	QuestionIDs   []string `json:"questions,omitempty"`
}

// SubmitRequest finalizes the answer in progress.
type SubmitRequest struct {
	AnswerID        string       `json:"answer_id,omitempty"`
	Status          model.Status `json:"status,omitempty"`
	DurationSeconds float64      `json:"duration_seconds"`
	HeadVariance    float64      `json:"head_variance"`
	GazeDrift       float64      `json:"gaze_drift"`
}

// Submission acknowledges a finalized answer. Grading happens later.
type Submission struct {
	SessionID  string `json:"session_id"`
	AnswerID   string `json:"answer_id,omitempty"`
	QuestionID string `json:"question_id,omitempty"`
	Seq        int    `json:"seq"`
	Duplicate  bool   `json:"duplicate"`
}

// CreateSession starts a new interview.
func (s *Service) CreateSession(ctx context.Context, req CreateSessionRequest) (model.SessionResult, error) {
	store, err := s.components()
	if err != nil {
		return model.SessionResult{}, err
	}
	role, err := lexicon.ParseRole(req.Role)
	if err != nil {
		return model.SessionResult{}, err
	}
	lx, err := lexicon.For(role)
	if err != nil {
		return model.SessionResult{}, err
	}
	questions, err := s.pickQuestions(lx, req)
	if err != nil {
		return model.SessionResult{}, err
	}

	sess, err := session.New(uuid.NewString(), lx, questions,
		session.WithClock(s.now),
		session.WithOnFinish(s.onFinish),
	)
	if err != nil {
		return model.SessionResult{}, err
	}
	if err := store.Put(ctx, sess); err != nil {
		return model.SessionResult{}, err
	}
	metrics.RecordSessionStarted(role.String())
	s.logger.Info(ctx, "session started",
		logger.String("session_id", sess.ID()),
		logger.String("role", role.String()),
		logger.Int("questions", len(questions)),
	)
	return sess.Snapshot(), nil
}

func (s *Service) pickQuestions(lx *lexicon.Lexicon, req CreateSessionRequest) ([]lexicon.Question, error) {
	if len(req.QuestionIDs) > 0 {
		out := make([]lexicon.Question, 0, len(req.QuestionIDs))
		for _, id := range req.QuestionIDs {
			q, ok := lx.Question(id)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
			}
			out = append(out, q)
		}
		return out, nil
	}

	n := req.QuestionCount
	if n < 0 {
		return nil, fmt.Errorf("%w: question_count must not be negative", ErrInvalidRequest)
	}
	if n == 0 {
		n = s.defaultQuestions
	}
	bank := lx.Questions()
	if n > len(bank) {
		n = len(bank)
	}
	return bank[:n], nil
}

// GetSession returns the current session record.
func (s *Service) GetSession(ctx context.Context, id string) (model.SessionResult, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.SessionResult{}, err
	}
	return sess.Snapshot(), nil
}

// AppendTranscript adds a recognised chunk to the answer in progress.
func (s *Service) AppendTranscript(ctx context.Context, id, chunk string) error {
	sess, err := s.session(ctx, id)
	if err != nil {
		return err
	}
	return sess.Append(chunk)
}

// SubmitAnswer finalizes the answer in progress and queues it for
// grading. A repeated AnswerID is acknowledged as a duplicate without
// touching the session. When the queue is full the answer is handed back
// to the session and ErrBackpressure is returned.
func (s *Service) SubmitAnswer(ctx context.Context, id string, req SubmitRequest) (Submission, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return Submission{}, err
	}

	key := ""
	if req.AnswerID != "" {
		key = dedupe.Key(id, req.AnswerID)
		if s.deduper.SeenAndRecord(ctx, key) {
			metrics.RecordAnswerDuplicate()
			s.logger.Debug(ctx, "duplicate answer submission",
				logger.String("session_id", id),
				logger.String("answer_id", req.AnswerID),
			)
			return Submission{SessionID: id, AnswerID: req.AnswerID, Duplicate: true}, nil
		}
	}

	status := req.Status
	if status == "" {
		status = model.StatusAnswered
	}
	t, err := sess.Finalize(status, session.Signals{
		DurationSeconds: req.DurationSeconds,
		HeadVariance:    req.HeadVariance,
		GazeDrift:       req.GazeDrift,
	})
	if err != nil {
		s.forget(ctx, key)
		return Submission{}, err
	}

	jobID := req.AnswerID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	job := model.GradingJob{JobID: jobID, SessionID: id, Seq: t.Seq, Answer: t.Answer}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		if aerr := sess.Abort(t); aerr == nil {
			s.forget(ctx, key)
			if errors.Is(err, queue.ErrFull) {
				return Submission{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
			}
			return Submission{}, fmt.Errorf("%w: %w", ErrNotStarted, err)
		}
		// A later answer already holds the next slot; grade this one here.
		s.logger.Warn(ctx, "queue rejected answer, grading inline",
			logger.String("session_id", id),
			logger.Int("seq", t.Seq),
			logger.Error(err),
		)
		if perr := s.inline.Process(ctx, job); perr != nil {
			s.logger.Error(ctx, "inline grading failed", logger.Error(perr))
		}
	}

	return Submission{
		SessionID:  id,
		AnswerID:   req.AnswerID,
		QuestionID: t.Answer.QuestionID,
		Seq:        t.Seq,
	}, nil
}

// SkipQuestion records the current question as skipped.
func (s *Service) SkipQuestion(ctx context.Context, id string) (Submission, error) {
	return s.SubmitAnswer(ctx, id, SubmitRequest{Status: model.StatusSkipped})
}

// FinishSession waits for outstanding grading, bounded by the finish
// timeout, and returns the final record.
func (s *Service) FinishSession(ctx context.Context, id string) (model.SessionResult, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.SessionResult{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.finishTimeout)
	defer cancel()
	res, err := sess.Finish(ctx)
	if err != nil {
		return model.SessionResult{}, err
	}
	_, active := s.store.Count(ctx)
	metrics.UpdateActiveSessions(active)
	return res, nil
}

// Record fills the slot a grading job reserved. Once every question has
// been graded the session finishes on its own.
func (s *Service) Record(ctx context.Context, job model.GradingJob, res model.QuestionResult) error {
	sess, err := s.store.Get(ctx, job.SessionID)
	if err != nil {
		return err
	}
	allDone, err := sess.Complete(job.Seq, res)
	if err != nil {
		return err
	}
	if allDone {
		if _, err := sess.Finish(ctx); err != nil {
			return fmt.Errorf("auto finish %s: %w", job.SessionID, err)
		}
	}
	return nil
}

// onFinish runs under the session lock.
func (s *Service) onFinish(r model.SessionResult) {
	grade := ""
	score := 0
	if r.Overall != nil {
		grade, score = string(r.Overall.Grade), r.Overall.Score
	}
	metrics.RecordSessionFinished(r.Role.String(), grade)
	s.logger.Info(context.Background(), "session finished",
		logger.String("session_id", r.ID),
		logger.String("grade", grade),
		logger.Int("score", score),
		logger.Int("questions", len(r.Questions)),
	)
}

func (s *Service) session(ctx context.Context, id string) (*session.Session, error) {
	store, err := s.components()
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, id)
}

func (s *Service) forget(ctx context.Context, key string) {
	if key != "" {
		s.deduper.Unrecord(ctx, key)
	}
}
