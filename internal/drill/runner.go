package drill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/okian/rehearse/pkg/logger"
)

// Retry settings for answers refused with 429.
const (
	maxSubmitAttempts = 20
	retryBackoff      = 10 * time.Millisecond
)

// Sentinel errors.
var (
	ErrInvalidConfig = errors.New("invalid drill config")
	ErrNoRoles       = errors.New("service lists no roles")
)

type roleInfo struct {
	ID string `json:"id"`
}

type sessionResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Overall *struct {
		Score int    `json:"score"`
		Grade string `json:"grade"`
	} `json:"overall"`
}

type submission struct {
	Duplicate bool `json:"duplicate"`
}

// outcome is the tally of one interview.
type outcome struct {
	grade        string
	answers      int
	skips        int
	duplicates   int
	backpressure int
	err          error
}

// Runner drives interviews against one service.
type Runner struct {
	cfg    Config
	client *httpClient
	gen    *generator
	logger logger.Logger
}

// NewRunner validates cfg and returns a Runner.
func NewRunner(cfg Config) (*Runner, error) {
	switch {
	case cfg.BaseURL == "":
		return nil, fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case cfg.Sessions < 1:
		return nil, fmt.Errorf("%w: sessions must be positive", ErrInvalidConfig)
	case cfg.Questions < 0:
		return nil, fmt.Errorf("%w: questions must not be negative", ErrInvalidConfig)
	}
	if cfg.Workers < 1 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Runner{
		cfg:    cfg,
		client: newHTTPClient(cfg.BaseURL, cfg.Timeout),
		gen:    newGenerator(cfg.Seed),
		logger: logger.Get().Named("drill"),
	}, nil
}

// Run executes the drill and returns its statistics. Individual interview
// failures are counted, not returned.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now(), Grades: map[string]int{}}

	r.logger.Info(ctx, "starting drill",
		logger.String("base_url", r.cfg.BaseURL),
		logger.Int("sessions", r.cfg.Sessions),
		logger.Int("workers", r.cfg.Workers),
		logger.Int("questions", r.cfg.Questions),
	)

	if _, err := r.client.get(ctx, "/healthz", nil); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}
	roles, err := r.roles(ctx)
	if err != nil {
		return nil, err
	}

	jobs := make(chan int, r.cfg.Workers*2)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for w := 0; w < min(r.cfg.Workers, r.cfg.Sessions); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				role := roles[i%len(roles)]
				res := r.interview(ctx, role)

				mu.Lock()
				stats.add(res)
				mu.Unlock()

				if res.err != nil {
					r.logger.Warn(ctx, "interview failed", logger.String("role", role), logger.Error(res.err))
				} else if r.cfg.Verbose {
					r.logger.Info(ctx, "interview finished",
						logger.String("role", role),
						logger.String("grade", res.grade),
						logger.Int("answers", res.answers),
					)
				}
			}
		}()
	}

feed:
	for i := 0; i < r.cfg.Sessions; i++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	r.logger.Info(ctx, "drill completed",
		logger.Int("finished", stats.SessionsFinished),
		logger.Int("failed", stats.SessionsFailed),
		logger.Duration("duration", stats.Duration),
	)
	return stats, ctx.Err()
}

func (r *Runner) roles(ctx context.Context) ([]string, error) {
	if r.cfg.Role != "" {
		return []string{r.cfg.Role}, nil
	}
	var infos []roleInfo
	if _, err := r.client.get(ctx, "/roles", &infos); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	out := make([]string, 0, len(infos))
	for _, ri := range infos {
		out = append(out, ri.ID)
	}
	if len(out) == 0 {
		return nil, ErrNoRoles
	}
	return out, nil
}

// interview runs one session until the server reports no current question.
func (r *Runner) interview(ctx context.Context, role string) outcome {
	var res outcome
	var sess sessionResponse
	body := map[string]any{"role": role, "question_count": r.cfg.Questions}
	if _, err := r.client.post(ctx, "/sessions", body, &sess); err != nil {
		res.err = fmt.Errorf("create session: %w", err)
		return res
	}
	base := "/sessions/" + sess.ID

	for {
		st := r.gen.next()
		done, err := r.answer(ctx, base, st, &res)
		if err != nil {
			res.err = err
			return res
		}
		if done {
			break
		}
	}

	if _, err := r.client.post(ctx, base+"/finish", nil, &sess); err != nil {
		res.err = fmt.Errorf("finish session: %w", err)
		return res
	}
	if sess.Overall != nil {
		res.grade = sess.Overall.Grade
	}
	return res
}

// answer plays one step. It reports done once the session has no
// current question.
func (r *Runner) answer(ctx context.Context, base string, st step, res *outcome) (bool, error) {
	if st.skip {
		_, err := r.client.post(ctx, base+"/skip", nil, nil)
		if statusCode(err) == http.StatusConflict {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("skip: %w", err)
		}
		res.skips++
		return false, nil
	}

	for _, c := range st.chunks {
		_, err := r.client.post(ctx, base+"/transcript", map[string]string{"text": c}, nil)
		if statusCode(err) == http.StatusConflict {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("append transcript: %w", err)
		}
	}

	req := map[string]any{
		"answer_id":        uuid.NewString(),
		"duration_seconds": st.durationSeconds,
		"head_variance":    st.headVariance,
		"gaze_drift":       st.gazeDrift,
	}
	for attempt := 1; ; attempt++ {
		_, err := r.client.post(ctx, base+"/answers", req, nil)
		switch code := statusCode(err); {
		case err == nil:
		case code == http.StatusConflict:
			return true, nil
		case code == http.StatusTooManyRequests && attempt < maxSubmitAttempts:
			res.backpressure++
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
			continue
		default:
			return false, fmt.Errorf("submit answer: %w", err)
		}
		break
	}
	res.answers++

	if r.cfg.DuplicateEvery > 0 && res.answers%r.cfg.DuplicateEvery == 0 {
		var sub submission
		if _, err := r.client.post(ctx, base+"/answers", req, &sub); err != nil {
			return false, fmt.Errorf("resubmit answer: %w", err)
		}
		if !sub.Duplicate {
			return false, fmt.Errorf("resubmitted answer %v was not recognised as a duplicate", req["answer_id"])
		}
		res.duplicates++
	}
	return false, nil
}

func (s *Stats) add(o outcome) {
	s.SessionsStarted++
	s.Answers += o.answers
	s.Skips += o.skips
	s.Duplicates += o.duplicates
	s.Backpressure += o.backpressure
	if o.err != nil {
		s.SessionsFailed++
		return
	}
	s.SessionsFinished++
	if o.grade != "" {
		s.Grades[o.grade]++
	}
}

// Report writes a human readable summary of s to w.
func Report(w io.Writer, s *Stats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "sessions\t%d finished, %d failed\n", s.SessionsFinished, s.SessionsFailed)
	fmt.Fprintf(tw, "answers\t%d (skips %d, duplicates %d, backpressure retries %d)\n",
		s.Answers, s.Skips, s.Duplicates, s.Backpressure)
	fmt.Fprintf(tw, "duration\t%s\n", s.Duration.Round(time.Millisecond))
	if secs := s.Duration.Seconds(); secs > 0 {
		fmt.Fprintf(tw, "throughput\t%.1f answers/s\n", float64(s.Answers)/secs)
	}
	grades := make([]string, 0, len(s.Grades))
	for g := range s.Grades {
		grades = append(grades, g)
	}
	sort.Strings(grades)
	for _, g := range grades {
		fmt.Fprintf(tw, "grade %s\t%d\n", g, s.Grades[g])
	}
	return tw.Flush()
}
