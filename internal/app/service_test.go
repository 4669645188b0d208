package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/rehearse/internal/adapters/repository"
	service "github.com/okian/rehearse/internal/app"
	"github.com/okian/rehearse/internal/domain/lexicon"
	"github.com/okian/rehearse/internal/domain/model"
	"github.com/okian/rehearse/internal/domain/relevance"
	"github.com/okian/rehearse/internal/domain/session"
	"github.com/okian/rehearse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const strongAnswer = "At my last company our checkout API was slow during traffic spikes. " +
	"I was responsible for improving latency for the payment service. " +
	"I added Redis caching in front of the database, moved email sending to a queue " +
	"worker, and introduced rate limiting middleware. " +
	"As a result latency dropped by forty percent and errors went down."

func started(t *testing.T, opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = svc.Stop(ctx)
	})
	return svc
}

func waitFinished(svc *service.Service, id string) model.SessionResult {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		res, err := svc.GetSession(context.Background(), id)
		if err == nil && res.Status == model.SessionFinished {
			return res
		}
		time.Sleep(5 * time.Millisecond)
	}
	res, _ := svc.GetSession(context.Background(), id)
	return res
}

func TestService_Stateless(t *testing.T) {
	ctx := context.Background()
	svc := service.New()

	Convey("Given a service that was never started", t, func() {
		Convey("Then roles are listed with their banks", func() {
			roles := svc.Roles()
			So(roles, ShouldHaveLength, len(lexicon.Roles()))
			for _, r := range roles {
				So(r.Label, ShouldNotBeEmpty)
				So(r.Questions, ShouldNotBeEmpty)
			}
		})

		Convey("Then a full answer outscores a short one", func() {
			res, err := svc.Grade(ctx, service.GradeRequest{
				Role:            "backend_node",
				Question:        "Explain how you would design middleware for an API.",
				Transcript:      strongAnswer,
				DurationSeconds: 30,
				HeadVariance:    5,
			})
			So(err, ShouldBeNil)
			So(res.Relevance.Source, ShouldEqual, relevance.SourceLocal)
			So(res.OverallScore, ShouldNotBeNil)

			weak, err := svc.Grade(ctx, service.GradeRequest{
				Role:            "backend_node",
				Question:        "Explain how you would design middleware for an API.",
				Transcript:      "um I don't know",
				DurationSeconds: 30,
				HeadVariance:    5,
			})
			So(err, ShouldBeNil)
			So(weak.Relevance.Score, ShouldEqual, relevance.ShortAnswerScore)
			So(*res.OverallScore, ShouldBeGreaterThan, *weak.OverallScore)
		})

		Convey("Then a bank question can be named by id", func() {
			res, err := svc.Grade(ctx, service.GradeRequest{Role: "data_sql", QuestionID: "ds1", Transcript: "indexes"})
			So(err, ShouldBeNil)
			So(res.Question, ShouldStartWith, "Explain indexing")
		})

		Convey("Then bad requests are rejected", func() {
			_, err := svc.Grade(ctx, service.GradeRequest{Role: "chef", Question: "q"})
			So(errors.Is(err, lexicon.ErrUnsupportedRole), ShouldBeTrue)

			_, err = svc.Grade(ctx, service.GradeRequest{Role: "data_sql"})
			So(errors.Is(err, service.ErrInvalidRequest), ShouldBeTrue)

			_, err = svc.Grade(ctx, service.GradeRequest{Role: "data_sql", QuestionID: "zz"})
			So(errors.Is(err, service.ErrUnknownQuestion), ShouldBeTrue)
		})

		Convey("Then relevance is scored locally", func() {
			res, err := svc.Relevance(ctx, service.RelevanceRequest{
				Role:       "backend_node",
				Question:   "Explain how you would design middleware for an API.",
				Transcript: "",
			})
			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 0)
			So(res.Verdict, ShouldEqual, relevance.VerdictOffTopic)
		})

		Convey("Then session operations need Start", func() {
			_, err := svc.CreateSession(ctx, service.CreateSessionRequest{Role: "data_sql"})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats(ctx).Started, ShouldBeFalse)
		})
	})
}

func TestService_SessionLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service and a two question session", t, func() {
		svc := started(t, service.WithWorkerCount(2))
		res, err := svc.CreateSession(ctx, service.CreateSessionRequest{Role: "Backend_Node", QuestionCount: 2})
		So(err, ShouldBeNil)
		So(res.Status, ShouldEqual, model.SessionActive)
		So(res.Role, ShouldEqual, lexicon.RoleBackendNode)
		id := res.ID

		Convey("When both questions are answered", func() {
			So(svc.AppendTranscript(ctx, id, strongAnswer[:120]), ShouldBeNil)
			So(svc.AppendTranscript(ctx, id, strongAnswer[120:]), ShouldBeNil)
			first, err := svc.SubmitAnswer(ctx, id, service.SubmitRequest{AnswerID: "a1", DurationSeconds: 30, HeadVariance: 5})
			So(err, ShouldBeNil)
			So(first.Seq, ShouldEqual, 0)

			So(svc.AppendTranscript(ctx, id, "um I think it depends"), ShouldBeNil)
			_, err = svc.SubmitAnswer(ctx, id, service.SubmitRequest{AnswerID: "a2", DurationSeconds: 10})
			So(err, ShouldBeNil)

			Convey("Then the session finishes on its own", func() {
				final := waitFinished(svc, id)
				So(final.Status, ShouldEqual, model.SessionFinished)
				So(final.Questions, ShouldHaveLength, 2)
				So(final.Questions[0].ID, ShouldEqual, res.CurrentQuestion.ID)
				So(final.Overall, ShouldNotBeNil)
				So(final.Overall.Aggregates.AnsweredCount, ShouldEqual, 2)
			})

			Convey("Then a retried submission is a duplicate", func() {
				dup, err := svc.SubmitAnswer(ctx, id, service.SubmitRequest{AnswerID: "a1"})
				So(err, ShouldBeNil)
				So(dup.Duplicate, ShouldBeTrue)
			})
		})

		Convey("When a question is skipped and the session finished early", func() {
			sk, err := svc.SkipQuestion(ctx, id)
			So(err, ShouldBeNil)
			So(sk.QuestionID, ShouldEqual, res.CurrentQuestion.ID)

			final, err := svc.FinishSession(ctx, id)

			Convey("Then the skipped question scores zero", func() {
				So(err, ShouldBeNil)
				So(final.Status, ShouldEqual, model.SessionFinished)
				So(final.Questions, ShouldHaveLength, 1)
				So(final.Questions[0].Status, ShouldEqual, model.StatusSkipped)
				So(final.Overall.Aggregates.SkippedCount, ShouldEqual, 1)
				So(final.Overall.Grade, ShouldEqual, model.GradeF)
			})

			Convey("Then further answers are refused", func() {
				_, err := svc.SubmitAnswer(ctx, id, service.SubmitRequest{})
				So(errors.Is(err, session.ErrSessionFinished), ShouldBeTrue)
				So(errors.Is(svc.AppendTranscript(ctx, id, "late"), session.ErrSessionFinished), ShouldBeTrue)
			})
		})

		Convey("When the status is invalid", func() {
			_, err := svc.SubmitAnswer(ctx, id, service.SubmitRequest{AnswerID: "x", Status: "paused"})

			Convey("Then the answer id stays usable", func() {
				So(err, ShouldNotBeNil)
				sub, err := svc.SubmitAnswer(ctx, id, service.SubmitRequest{AnswerID: "x"})
				So(err, ShouldBeNil)
				So(sub.Duplicate, ShouldBeFalse)
			})
		})

		Convey("Then unknown sessions are not found", func() {
			_, err := svc.GetSession(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Then stats reflect the session", func() {
			st := svc.GetStats(ctx)
			So(st.Started, ShouldBeTrue)
			So(st.Workers, ShouldEqual, 2)
			So(st.Sessions, ShouldEqual, 1)
			So(st.ActiveSessions, ShouldEqual, 1)
		})
	})

	Convey("Given explicit question ids", t, func() {
		svc := started(t)

		res, err := svc.CreateSession(ctx, service.CreateSessionRequest{Role: "data_sql", QuestionIDs: []string{"ds3", "ds1"}})
		So(err, ShouldBeNil)
		So(res.CurrentQuestion.ID, ShouldEqual, "ds3")

		_, err = svc.CreateSession(ctx, service.CreateSessionRequest{Role: "data_sql", QuestionIDs: []string{"nope"}})
		So(errors.Is(err, service.ErrUnknownQuestion), ShouldBeTrue)

		_, err = svc.CreateSession(ctx, service.CreateSessionRequest{Role: "data_sql", QuestionCount: -1})
		So(errors.Is(err, service.ErrInvalidRequest), ShouldBeTrue)
	})
}

// gateScorer blocks remote scoring until released.
type gateScorer struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gateScorer) Score(ctx context.Context, _ relevance.Input) (relevance.Result, error) {
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
	case <-ctx.Done():
	}
	return relevance.Result{}, relevance.ErrRemoteUnavailable
}

func TestService_Backpressure(t *testing.T) {
	ctx := context.Background()

	Convey("Given one busy worker and a queue of one", t, func() {
		gate := &gateScorer{entered: make(chan struct{}), release: make(chan struct{})}
		svc := started(t,
			service.WithWorkerCount(1),
			service.WithQueueSize(1),
			service.WithRemoteScorer(gate),
		)
		res, err := svc.CreateSession(ctx, service.CreateSessionRequest{Role: "data_sql", QuestionCount: 4})
		So(err, ShouldBeNil)
		id := res.ID

		_, err = svc.SubmitAnswer(ctx, id, service.SubmitRequest{AnswerID: "a1"})
		So(err, ShouldBeNil)
		<-gate.entered
		_, err = svc.SubmitAnswer(ctx, id, service.SubmitRequest{AnswerID: "a2"})
		So(err, ShouldBeNil)

		So(svc.AppendTranscript(ctx, id, "kept for retry"), ShouldBeNil)
		_, err = svc.SubmitAnswer(ctx, id, service.SubmitRequest{AnswerID: "a3"})

		Convey("Then the third answer is refused and handed back", func() {
			So(errors.Is(err, service.ErrBackpressure), ShouldBeTrue)
			snap, _ := svc.GetSession(ctx, id)
			So(snap.CurrentQuestion.ID, ShouldEqual, "ds3")

			close(gate.release)
			sub, err := svc.SubmitAnswer(ctx, id, service.SubmitRequest{AnswerID: "a3"})
			for errors.Is(err, service.ErrBackpressure) {
				time.Sleep(5 * time.Millisecond)
				sub, err = svc.SubmitAnswer(ctx, id, service.SubmitRequest{AnswerID: "a3"})
			}
			So(err, ShouldBeNil)
			So(sub.Duplicate, ShouldBeFalse)
			So(sub.Seq, ShouldEqual, 2)

			final, err := svc.FinishSession(ctx, id)
			So(err, ShouldBeNil)
			So(final.Questions, ShouldHaveLength, 3)
			So(final.Questions[2].Transcript, ShouldEqual, model.Transcript("kept for retry"))
			So(final.Questions[0].Relevance.Source, ShouldEqual, relevance.SourceLocalFallback)
		})
	})
}

func TestService_Janitor(t *testing.T) {
	ctx := context.Background()

	Convey("Given a finished session past its ttl", t, func() {
		var (
			mu  sync.Mutex
			now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
		)
		clock := func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}
		svc := started(t, service.WithClock(clock), service.WithSessionTTL(30*time.Minute))

		done, err := svc.CreateSession(ctx, service.CreateSessionRequest{Role: "security"})
		So(err, ShouldBeNil)
		_, err = svc.FinishSession(ctx, done.ID)
		So(err, ShouldBeNil)
		live, err := svc.CreateSession(ctx, service.CreateSessionRequest{Role: "security"})
		So(err, ShouldBeNil)

		mu.Lock()
		now = now.Add(31 * time.Minute)
		mu.Unlock()
		service.Evict(svc, ctx)

		Convey("Then only the finished session is gone", func() {
			_, err := svc.GetSession(ctx, done.ID)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			_, err = svc.GetSession(ctx, live.ID)
			So(err, ShouldBeNil)
		})
	})
}
