package model

import "github.com/okian/rehearse/internal/domain/lexicon"

// Answer is a finalized answer ready for evaluation. Every field is a
// value; the transcript is a frozen snapshot.
type Answer struct {
	QuestionID      string       `json:"question_id"`
	Question        string       `json:"question"`
	Role            lexicon.Role `json:"role"`
	Transcript      Transcript   `json:"transcript"`
	DurationSeconds float64      `json:"duration_seconds"`
	HeadVariance    float64      `json:"head_variance"`
	GazeDrift       float64      `json:"gaze_drift"`
	Status          Status       `json:"status"`
}

// GradingJob asks a worker to evaluate an answer and fill a session slot.
type GradingJob struct {
	JobID     string // idempotency key of the submission
	SessionID string
	Seq       int // slot index within the session
	Answer    Answer
}
