package scorer

import (
	"net/http"
	"time"
)

// Option configures an HTTPScorer.
type Option func(*HTTPScorer)

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) Option {
	return func(s *HTTPScorer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client. The client's own Timeout is
// left untouched; WithTimeout still applies through the request context.
func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPScorer) {
		if c != nil {
			s.client = c
		}
	}
}
