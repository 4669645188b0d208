package service

import (
	"time"

	"github.com/okian/rehearse/internal/domain/relevance"
	"github.com/okian/rehearse/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of grading workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the grading queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submission keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRemoteScorer enables the enhanced relevance scorer.
func WithRemoteScorer(remote relevance.Scorer) Option {
	return func(s *Service) {
		s.remote = remote
	}
}

// WithDefaultQuestionCount sets the question count for sessions that do
// not ask for one.
func WithDefaultQuestionCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultQuestions = n
		}
	}
}

// WithSessionTTL sets how long finished sessions stay readable.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.sessionTTL = d
		}
	}
}

// WithJanitorInterval sets the eviction job period.
func WithJanitorInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.janitorInterval = d
		}
	}
}

// WithFinishTimeout bounds how long finishing waits for grading.
func WithFinishTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.finishTimeout = d
		}
	}
}

// WithClock overrides the time source for sessions and eviction.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
