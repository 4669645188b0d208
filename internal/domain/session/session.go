// Package session tracks one mock interview: the question sequence, the
// answer in progress and the ordered result slots filled by grading.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/rehearse/internal/domain/grading"
	"github.com/okian/rehearse/internal/domain/lexicon"
	"github.com/okian/rehearse/internal/domain/model"
)

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithOnFinish registers fn to run once when the session finishes. It is
// called with the session lock held and must not call back into it.
func WithOnFinish(fn func(model.SessionResult)) Option {
	return func(s *Session) {
		s.onFinish = fn
	}
}

// Signals are the delivery measurements captured alongside an answer.
type Signals struct {
	DurationSeconds float64
	HeadVariance    float64
	GazeDrift       float64
}

// Ticket is a reserved result slot together with the frozen answer that
// will fill it.
type Ticket struct {
	Seq    int
	Answer model.Answer
}

type slot struct {
	result model.QuestionResult
	done   bool
}

// Session is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	id        string
	role      lexicon.Role
	skill     string
	questions []lexicon.Question
	cursor    int
	buffer    *model.TranscriptBuffer
	slots     []slot
	pending   int
	idle      chan struct{}
	closing   bool
	status    model.SessionStatus
	startedAt time.Time
	endedAt   time.Time
	overall   *model.Overall
	now       func() time.Time
	onFinish  func(model.SessionResult)
}

// New starts an active session over questions.
func New(id string, lx *lexicon.Lexicon, questions []lexicon.Question, opts ...Option) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	s := &Session{
		id:        id,
		role:      lx.Role(),
		skill:     lx.Skill(),
		questions: append([]lexicon.Question(nil), questions...),
		buffer:    model.NewTranscriptBuffer(),
		idle:      make(chan struct{}),
		status:    model.SessionActive,
		now:       time.Now,
	}
	close(s.idle)
	for _, opt := range opts {
		opt(s)
	}
	s.startedAt = s.now().UTC()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Role returns the interview role.
func (s *Session) Role() lexicon.Role { return s.role }

// Current returns the question awaiting an answer.
func (s *Session) Current() (lexicon.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(); err != nil {
		return lexicon.Question{}, err
	}
	return s.questions[s.cursor], nil
}

// Append adds a transcript chunk to the answer in progress.
func (s *Session) Append(chunk string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(); err != nil {
		return err
	}
	s.buffer.Append(chunk)
	return nil
}

// Finalize freezes the answer in progress, reserves the next result slot
// and moves on to the following question. The returned ticket must be
// completed with Complete.
func (s *Session) Finalize(status model.Status, sig Signals) (Ticket, error) {
	if !status.Valid() {
		return Ticket{}, fmt.Errorf("%w: %q", grading.ErrInvalidStatus, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(); err != nil {
		return Ticket{}, err
	}

	// Swap buffers before anything else so new chunks land in a fresh one.
	frozen := s.buffer.Freeze()
	s.buffer = model.NewTranscriptBuffer()

	q := s.questions[s.cursor]
	if status == model.StatusSkipped {
		sig = Signals{}
	}
	t := Ticket{
		Seq: len(s.slots),
		Answer: model.Answer{
			QuestionID:      q.ID,
			Question:        q.Text,
			Role:            s.role,
			Transcript:      frozen,
			DurationSeconds: sig.DurationSeconds,
			HeadVariance:    sig.HeadVariance,
			GazeDrift:       sig.GazeDrift,
			Status:          status,
		},
	}
	s.slots = append(s.slots, slot{})
	s.cursor++
	if s.pending == 0 {
		s.idle = make(chan struct{})
	}
	s.pending++
	return t, nil
}

// Skip finalizes the current question as skipped.
func (s *Session) Skip() (Ticket, error) {
	return s.Finalize(model.StatusSkipped, Signals{})
}

// Complete fills a reserved slot. It reports whether every question has
// now been answered or skipped and graded.
func (s *Session) Complete(seq int, q model.QuestionResult) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < 0 || seq >= len(s.slots) {
		return false, fmt.Errorf("%w: %d", ErrUnknownSlot, seq)
	}
	if s.slots[seq].done {
		return false, fmt.Errorf("%w: %d", ErrSlotFilled, seq)
	}
	s.slots[seq] = slot{result: q.Clone(), done: true}
	s.pending--
	if s.pending == 0 {
		close(s.idle)
	}
	return s.pending == 0 && s.cursor >= len(s.questions), nil
}

// Abort hands back a ticket that never reached grading. Only the most
// recent unfilled slot can be aborted; the cursor moves back and the frozen
// transcript is restored ahead of anything appended since.
func (s *Session) Abort(t Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	last := len(s.slots) - 1
	if t.Seq != last || last < 0 || s.slots[last].done || s.status == model.SessionFinished {
		return fmt.Errorf("%w: %d", ErrUnknownSlot, t.Seq)
	}
	s.slots = s.slots[:last]
	s.cursor--

	restored := model.NewTranscriptBuffer()
	restored.Append(string(t.Answer.Transcript))
	restored.Append(string(s.buffer.Freeze()))
	s.buffer = restored

	s.pending--
	if s.pending == 0 {
		close(s.idle)
	}
	return nil
}

// Finish waits for outstanding grading, computes the overall result and
// ends the session. Finishing an already finished session returns the
// stored result. If ctx ends first the session stays active.
func (s *Session) Finish(ctx context.Context) (model.SessionResult, error) {
	s.mu.Lock()
	if s.status == model.SessionFinished {
		defer s.mu.Unlock()
		return s.snapshotLocked(), nil
	}
	s.closing = true
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
	case <-ctx.Done():
		s.mu.Lock()
		if s.status != model.SessionFinished {
			s.closing = false
		}
		s.mu.Unlock()
		return model.SessionResult{}, fmt.Errorf("finish session %s: %w", s.id, ctx.Err())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != model.SessionFinished {
		results := make([]model.QuestionResult, 0, len(s.slots))
		for _, sl := range s.slots {
			results = append(results, sl.result)
		}
		overall := grading.Summarize(results)
		s.overall = &overall
		s.status = model.SessionFinished
		s.endedAt = s.now().UTC()
		s.buffer.Reset()
		if s.onFinish != nil {
			s.onFinish(s.snapshotLocked())
		}
	}
	return s.snapshotLocked(), nil
}

// Snapshot returns a deep copy of the session record. Slots still being
// graded are left out and counted in Pending.
func (s *Session) Snapshot() model.SessionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Finished reports whether the session has ended.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == model.SessionFinished
}

// EndedAt returns when the session finished, or the zero time.
func (s *Session) EndedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endedAt
}

func (s *Session) writableLocked() error {
	if s.status == model.SessionFinished || s.closing {
		return ErrSessionFinished
	}
	if s.cursor >= len(s.questions) {
		return ErrNoMoreQuestions
	}
	return nil
}

func (s *Session) snapshotLocked() model.SessionResult {
	out := model.SessionResult{
		ID:        s.id,
		Role:      s.role,
		Skill:     s.skill,
		Status:    s.status,
		StartedAt: s.startedAt,
		Questions: make([]model.QuestionResult, 0, len(s.slots)),
		Pending:   s.pending,
	}
	for _, sl := range s.slots {
		if sl.done {
			out.Questions = append(out.Questions, sl.result.Clone())
		}
	}
	if s.status == model.SessionFinished {
		ended := s.endedAt
		out.EndedAt = &ended
		o := *s.overall
		o.Summary = append([]string{}, o.Summary...)
		out.Overall = &o
	} else if !s.closing && s.cursor < len(s.questions) {
		q := s.questions[s.cursor]
		out.CurrentQuestion = &q
	}
	return out
}
