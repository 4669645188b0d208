// Package scorer is the client for the enhanced relevance scoring service.
package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/okian/rehearse/internal/domain/lexicon"
	"github.com/okian/rehearse/internal/domain/relevance"
)

const (
	defaultTimeout  = 3 * time.Second
	maxResponseSize = 1 << 20

	// ReasonRemoteDefault is used when the service returns no reasons.
	ReasonRemoteDefault = "Scored by the enhanced scoring service."
)

// ErrNoEndpoint is returned by New for an empty URL.
var ErrNoEndpoint = errors.New("remote scorer endpoint is empty")

// Request is the body sent to the scoring service.
type Request struct {
	Transcript string `json:"transcript"`
	Role       string `json:"role"`
	Skill      string `json:"skill"`
	Question   string `json:"question"`
}

// response accepts both the primary and the legacy field names.
type response struct {
	Score   *float64 `json:"score"`
	Overall *float64 `json:"overall"`

	Reasons     []string `json:"reasons"`
	Suggestions []string `json:"suggestions"`

	MatchedKeywords      []string `json:"matchedKeywords"`
	MatchedKeywordsSnake []string `json:"matched_keywords"`
	MissingKeywords      []string `json:"missingKeywords"`
	MissingKeywordsSnake []string `json:"missing_keywords"`
}

// HTTPScorer implements relevance.Scorer against a JSON endpoint.
type HTTPScorer struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
}

// New creates a scorer posting to endpoint.
func New(endpoint string, opts ...Option) (*HTTPScorer, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	s := &HTTPScorer{
		endpoint: endpoint,
		client:   &http.Client{},
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Score implements relevance.Scorer. Every failure wraps one of the
// relevance.ErrRemote* kinds.
func (s *HTTPScorer) Score(ctx context.Context, in relevance.Input) (relevance.Result, error) {
	lx, err := lexicon.For(in.Role)
	if err != nil {
		return relevance.Result{}, err
	}
	body, err := json.Marshal(Request{
		Transcript: in.Transcript,
		Role:       lx.Role().String(),
		Skill:      lx.Skill(),
		Question:   in.Question,
	})
	if err != nil {
		return relevance.Result{}, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return relevance.Result{}, fmt.Errorf("%w: %w", relevance.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return relevance.Result{}, fmt.Errorf("%w: %w", relevance.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return relevance.Result{}, fmt.Errorf("%w: %s", relevance.ErrRemoteStatus, resp.Status)
	}

	var payload response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&payload); err != nil {
		if ctx.Err() != nil {
			return relevance.Result{}, fmt.Errorf("%w: %w", relevance.ErrRemoteUnavailable, ctx.Err())
		}
		return relevance.Result{}, fmt.Errorf("%w: %w", relevance.ErrMalformedResponse, err)
	}
	return toResult(payload)
}

func toResult(p response) (relevance.Result, error) {
	raw := p.Score
	if raw == nil {
		raw = p.Overall
	}
	if raw == nil {
		return relevance.Result{}, fmt.Errorf("%w: no score", relevance.ErrMalformedResponse)
	}
	if math.IsNaN(*raw) || math.IsInf(*raw, 0) || *raw < 0 || *raw > 100 {
		return relevance.Result{}, fmt.Errorf("%w: score %v out of range", relevance.ErrMalformedResponse, *raw)
	}
	score := int(math.Round(*raw))

	reasons := firstNonEmpty(p.Reasons, p.Suggestions)
	if len(reasons) == 0 {
		reasons = []string{ReasonRemoteDefault}
	}
	return relevance.Result{
		Score:           score,
		Verdict:         relevance.VerdictFor(score),
		Reasons:         reasons,
		MatchedKeywords: capped(firstNonEmpty(p.MatchedKeywords, p.MatchedKeywordsSnake)),
		MissingKeywords: capped(firstNonEmpty(p.MissingKeywords, p.MissingKeywordsSnake)),
		Source:          relevance.SourceRemote,
	}, nil
}

func firstNonEmpty(a, b []string) []string {
	if len(a) > 0 {
		return append([]string{}, a...)
	}
	return append([]string{}, b...)
}

func capped(in []string) []string {
	if len(in) > relevance.MaxListed {
		return in[:relevance.MaxListed]
	}
	return in
}
