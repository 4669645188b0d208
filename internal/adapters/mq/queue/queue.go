// Package queue holds grading jobs between answer submission and the
// worker pool.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/rehearse/internal/domain/model"
	"github.com/okian/rehearse/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Queue provides non-blocking enqueue and blocking dequeue.
type Queue interface {
	// Enqueue adds a job without blocking. It fails with ErrFull when the
	// queue is at capacity and ErrClosed after Close.
	Enqueue(ctx context.Context, job model.GradingJob) error
	// Dequeue blocks until a job is available. It returns false once the
	// queue is closed and drained or ctx is done.
	Dequeue(ctx context.Context) (model.GradingJob, bool)
	Len() int
	Cap() int
	Close() error
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	jobs     chan model.GradingJob
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan model.GradingJob, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, job model.GradingJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return fmt.Errorf("enqueue job %s: %w", job.JobID, err)
	}

	select {
	case q.jobs <- job:
		metrics.RecordQueueEnqueue()
		q.observe()
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue waits for the next job.
func (q *InMemoryQueue) Dequeue(ctx context.Context) (model.GradingJob, bool) {
	select {
	case job, ok := <-q.jobs:
		if !ok {
			return model.GradingJob{}, false
		}
		metrics.RecordQueueDequeue()
		q.observe()
		return job, true
	case <-ctx.Done():
		return model.GradingJob{}, false
	}
}

// Len returns the number of waiting jobs.
func (q *InMemoryQueue) Len() int {
	return len(q.jobs)
}

// Cap returns the configured capacity.
func (q *InMemoryQueue) Cap() int {
	return q.capacity
}

// Close stops accepting jobs. Jobs already queued can still be dequeued.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) observe() {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
