package service

import "errors"

// Sentinel error kinds returned by the service.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrBackpressure    = errors.New("grading queue is full")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrUnknownQuestion = errors.New("unknown question")
)
