// Package repository keeps interview sessions in memory.
package repository

import (
	"context"
	"time"

	"github.com/okian/rehearse/internal/domain/session"
)

// Store provides access to live sessions.
type Store interface {
	// Put adds a new session. It returns ErrExists for a duplicate id.
	Put(ctx context.Context, s *session.Session) error
	// Get returns the session or ErrNotFound.
	Get(ctx context.Context, id string) (*session.Session, error)
	// Delete removes a session; unknown ids are ignored.
	Delete(ctx context.Context, id string)
	// EvictFinished drops sessions that finished more than ttl ago and
	// returns how many were removed.
	EvictFinished(ctx context.Context, ttl time.Duration) int
	// Count returns the total and the unfinished number of sessions.
	Count(ctx context.Context) (total, active int)
}
