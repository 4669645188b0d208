// Package worker grades queued answers and hands the results back to their
// sessions.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/rehearse/internal/domain/model"
	"github.com/okian/rehearse/pkg/logger"
	"github.com/okian/rehearse/pkg/metrics"
)

const defaultWorkerMultiplier = 2

// Suggestion attached to an answer that could not be graded.
const failedSuggestion = "This answer could not be graded; please try again."

// Evaluator grades one answer.
type Evaluator interface {
	Evaluate(ctx context.Context, a model.Answer) (model.QuestionResult, error)
}

// Recorder stores a graded answer into the slot its job reserved.
type Recorder interface {
	Record(ctx context.Context, job model.GradingJob, res model.QuestionResult) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) (model.GradingJob, bool)
}

// InMemoryWorker pulls jobs until the queue closes or ctx ends.
type InMemoryWorker struct {
	queue     Queue
	evaluator Evaluator
	recorder  Recorder
	name      string
	active    *atomic.Int64

	done   chan struct{}
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker.
func NewInMemoryWorker(q Queue, ev Evaluator, rec Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		evaluator: ev,
		recorder:  rec,
		name:      "worker",
		active:    new(atomic.Int64),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run processes jobs until the queue is drained and closed or ctx ends.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)
	for {
		job, ok := w.queue.Dequeue(ctx)
		if !ok {
			return
		}
		if err := w.Process(ctx, job); err != nil {
			w.logger.Error(ctx, "error processing grading job", logger.Error(err))
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

// Process grades one job. The slot is always filled, with a failed result
// if grading errors, so a session waiting to finish is never stuck.
func (w *InMemoryWorker) Process(ctx context.Context, job model.GradingJob) error {
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	res, err := w.evaluator.Evaluate(ctx, job.Answer)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "evaluate")
		w.logger.Error(ctx, "grading failed",
			logger.String("job_id", job.JobID),
			logger.String("session_id", job.SessionID),
			logger.Error(err),
		)
		res = failedResult(job.Answer)
	}

	if rerr := w.recorder.Record(ctx, job, res); rerr != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "record")
		return fmt.Errorf("record job %s: %w", job.JobID, rerr)
	}
	if err != nil {
		return fmt.Errorf("evaluate job %s: %w", job.JobID, err)
	}
	w.logger.Debug(ctx, "answer graded",
		logger.String("session_id", job.SessionID),
		logger.Int("seq", job.Seq),
		logger.String("grade", string(res.Grade)),
	)
	return nil
}

func failedResult(a model.Answer) model.QuestionResult {
	zero := 0
	return model.QuestionResult{
		ID:              a.QuestionID,
		Question:        a.Question,
		Transcript:      a.Transcript,
		DurationSeconds: a.DurationSeconds,
		Status:          a.Status,
		Suggestions:     []string{failedSuggestion},
		OverallScore:    &zero,
		Grade:           model.GradeF,
	}
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	active  atomic.Int64
	logger  logger.Logger
}

// NewPool creates a worker pool. A count below one uses a multiple of the
// CPU count.
func NewPool(workerCount int, q Queue, ev Evaluator, rec Recorder, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := range p.workers {
		w := NewInMemoryWorker(q, ev, rec,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(p.logger),
		)
		w.active = &p.active
		p.workers[i] = w
	}
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("shutdown worker pool: %w", ctx.Err())
		}
	}
	return nil
}
