package relevance

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/okian/rehearse/internal/domain/lexicon"
	"github.com/okian/rehearse/pkg/logger"
	"github.com/okian/rehearse/pkg/metrics"
)

// ReasonFallback is appended when the remote scorer could not be used.
const ReasonFallback = "Enhanced scoring was unavailable; using the local estimate."

// Option configures a FallbackScorer.
type Option func(*FallbackScorer)

// WithRemote sets the preferred remote scorer.
func WithRemote(remote Scorer) Option {
	return func(f *FallbackScorer) {
		if remote != nil {
			f.remote = remote
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(f *FallbackScorer) {
		if l != nil {
			f.logger = l
		}
	}
}

// FallbackScorer tries the remote scorer once and answers from the local
// scorer whenever the remote attempt fails. Remote failures are never
// returned to the caller.
type FallbackScorer struct {
	remote Scorer
	local  Scorer
	logger logger.Logger
}

// NewFallbackScorer wraps local. Without WithRemote it simply delegates.
func NewFallbackScorer(local Scorer, opts ...Option) *FallbackScorer {
	f := &FallbackScorer{
		local:  local,
		logger: logger.Get().Named("relevance"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Score implements Scorer.
func (f *FallbackScorer) Score(ctx context.Context, in Input) (Result, error) {
	// An unknown role is a configuration fault regardless of the remote.
	if _, err := lexicon.For(in.Role); err != nil {
		return Result{}, err
	}

	if f.remote != nil {
		start := time.Now()
		res, err := f.remote.Score(ctx, in)
		metrics.RecordRemoteScoreLatency(float64(time.Since(start).Milliseconds()))
		if err == nil {
			res.Source = SourceRemote
			metrics.RecordRelevanceScored(string(res.Source), string(res.Verdict))
			return res, nil
		}
		kind := FailureKind(err)
		metrics.RecordRelevanceFallback(kind)
		f.logger.Warn(ctx, "remote relevance scoring failed, using local estimate",
			logger.String("reason", kind),
			logger.String("role", in.Role.String()),
			logger.Error(err),
		)

		res, err = f.local.Score(ctx, in)
		if err != nil {
			return Result{}, err
		}
		res.Source = SourceLocalFallback
		res.Reasons = append(res.Reasons, ReasonFallback)
		metrics.RecordRelevanceScored(string(res.Source), string(res.Verdict))
		return res, nil
	}

	res, err := f.local.Score(ctx, in)
	if err != nil {
		return Result{}, err
	}
	metrics.RecordRelevanceScored(string(res.Source), string(res.Verdict))
	return res, nil
}

// FailureKind classifies a remote failure for logs and metrics.
func FailureKind(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrRemoteStatus):
		return "status"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "unavailable"
	}
}
