package session

import "errors"

// Sentinel errors for session state transitions.
var (
	ErrSessionFinished = errors.New("session finished")
	ErrNoMoreQuestions = errors.New("no more questions")
	ErrNoQuestions     = errors.New("session has no questions")
	ErrUnknownSlot     = errors.New("unknown result slot")
	ErrSlotFilled      = errors.New("result slot already filled")
)
