// Package dedupe tracks answer submissions so a retried client request is
// graded at most once.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 50000

// Deduper records seen submission keys.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and records it
	// if not. It returns true for a duplicate.
	SeenAndRecord(ctx context.Context, key string) bool
	// Unrecord forgets key so the submission can be retried, e.g. after
	// the grading queue rejected it.
	Unrecord(ctx context.Context, key string)
	Size() int64
}

// Key builds the dedupe key of an answer submission within a session.
func Key(sessionID, answerID string) string {
	return sessionID + "/" + answerID
}

// inMemoryDeduper keeps keys in insertion order and evicts the oldest
// once maxSize is reached.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
		seen:    make(map[string]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		oldest := d.order.Front()
		d.order.Remove(oldest)
		delete(d.seen, oldest.Value.(string))
		d.size.Add(-1)
	}
	d.seen[key] = d.order.PushBack(key)
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
		d.size.Add(-1)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
