// Package service wires the grading engine, the session registry and the
// worker pool into the operations the HTTP API and CLI expose.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/okian/rehearse/internal/adapters/mq/queue"
	"github.com/okian/rehearse/internal/adapters/mq/worker"
	"github.com/okian/rehearse/internal/adapters/repository"
	"github.com/okian/rehearse/internal/domain/dedupe"
	"github.com/okian/rehearse/internal/domain/grading"
	"github.com/okian/rehearse/internal/domain/relevance"
	"github.com/okian/rehearse/pkg/logger"
	"github.com/okian/rehearse/pkg/metrics"
)

// Service implements the API dependencies for the interview coach.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     *repository.MemoryStore
	deduper   dedupe.Deduper
	queue     *queue.InMemoryQueue
	pool      *worker.Pool
	inline    *worker.InMemoryWorker
	local     *relevance.LocalScorer
	scorer    relevance.Scorer
	evaluator *grading.Evaluator
	remote    relevance.Scorer
	cron      *gocron.Scheduler

	// Configuration
	workerCount      int
	queueSize        int
	dedupeSize       int
	defaultQuestions int
	sessionTTL       time.Duration
	janitorInterval  time.Duration
	finishTimeout    time.Duration
	now              func() time.Time

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Components are built by Start; the stateless
// grading operations work before that.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU() * 2,
		queueSize:        1024,
		dedupeSize:       50_000,
		defaultQuestions: 5,
		sessionTTL:       time.Hour,
		janitorInterval:  time.Minute,
		finishTimeout:    10 * time.Second,
		now:              time.Now,
		logger:           logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.local = relevance.NewLocalScorer()
	fallbackOpts := []relevance.Option{relevance.WithLogger(s.logger.Named("relevance"))}
	if s.remote != nil {
		fallbackOpts = append(fallbackOpts, relevance.WithRemote(s.remote))
	}
	s.scorer = relevance.NewFallbackScorer(s.local, fallbackOpts...)
	s.evaluator = grading.NewEvaluator(s.scorer, grading.WithLogger(s.logger.Named("evaluator")))
	return s
}

// Start builds the session components and starts the workers and the
// janitor. Calling it twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting grading service...")

	s.store = repository.NewMemoryStore(repository.WithClock(s.now))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.evaluator, s,
		worker.WithPoolLogger(s.logger.Named("worker-pool")))
	s.inline = worker.NewInMemoryWorker(s.queue, s.evaluator, s,
		worker.WithName("inline"), worker.WithLogger(s.logger))

	// Workers outlive the start request.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.cron = gocron.NewScheduler(time.UTC)
	if _, err := s.cron.Every(s.janitorInterval).Do(s.evict, runCtx); err != nil {
		cancel()
		_ = s.pool.Shutdown(ctx)
		return fmt.Errorf("schedule session janitor: %w", err)
	}
	s.cron.StartAsync()

	s.started = true
	s.logger.Info(ctx, "grading service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Bool("remote_scorer", s.remote != nil),
		logger.Duration("session_ttl", s.sessionTTL),
	)
	return nil
}

// Stop stops the janitor, drains the grading queue and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping grading service...")

	s.cron.Stop()
	err := s.pool.Shutdown(ctx)
	s.cancel()
	s.started = false

	if err != nil {
		return fmt.Errorf("stop service: %w", err)
	}
	s.logger.Info(ctx, "grading service stopped")
	return nil
}

// Stats is a point-in-time view of the service.
type Stats struct {
	Started        bool  `json:"started"`
	Workers        int   `json:"workers"`
	QueueLength    int   `json:"queue_length"`
	QueueCapacity  int   `json:"queue_capacity"`
	DedupeEntries  int64 `json:"dedupe_entries"`
	Sessions       int   `json:"sessions"`
	ActiveSessions int   `json:"active_sessions"`
	RemoteScorer   bool  `json:"remote_scorer"`
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Started:      s.started,
		Workers:      s.workerCount,
		RemoteScorer: s.remote != nil,
	}
	if !s.started {
		return st
	}
	st.Workers = s.pool.Size()
	st.QueueLength = s.queue.Len()
	st.QueueCapacity = s.queue.Cap()
	st.DedupeEntries = s.deduper.Size()
	st.Sessions, st.ActiveSessions = s.store.Count(ctx)

	metrics.UpdateQueueSize(st.QueueLength)
	metrics.UpdateActiveSessions(st.ActiveSessions)
	return st
}

// evict runs on the janitor schedule.
func (s *Service) evict(ctx context.Context) {
	n := s.store.EvictFinished(ctx, s.sessionTTL)
	if n > 0 {
		s.logger.Info(ctx, "evicted finished sessions", logger.Int("count", n))
	}
}

// components returns the started components or ErrNotStarted.
func (s *Service) components() (*repository.MemoryStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}
