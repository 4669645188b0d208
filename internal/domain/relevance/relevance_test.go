package relevance

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/okian/rehearse/internal/domain/lexicon"
	"github.com/okian/rehearse/internal/domain/star"
	"github.com/okian/rehearse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

const rateLimiterQuestion = "How do you design a rate limiter for an API? Describe your implementation."

const strongAnswer = "At my company our team owned the public API for a payments project. " +
	"The goal was to design a rate limiter, and I was responsible for the challenge because one noisy client caused a problem for everyone else. " +
	"First I implemented a token bucket in Redis, then I added middleware that checked the bucket before every handler and returned a clear error. " +
	"I also used an async worker and a queue to refill buckets, and a cache for hot keys, with JWT auth to identify each client. " +
	"As a result we reduced error spikes by 90% and improved latency for every customer while scaling to ten times the traffic."

const moderateBody = "In my last role I built a rate limiter for our public API using Redis. " +
	"Each client had a token bucket keyed by API key and the middleware checked the bucket before the handler ran."

func backend(t *testing.T) *lexicon.Lexicon {
	lx, err := lexicon.For(lexicon.RoleBackendNode)
	if err != nil {
		t.Fatalf("lexicon: %v", err)
	}
	return lx
}

func TestVerdictFor(t *testing.T) {
	Convey("Given scores around the thresholds", t, func() {
		So(VerdictFor(100), ShouldEqual, VerdictOnTopic)
		So(VerdictFor(60), ShouldEqual, VerdictOnTopic)
		So(VerdictFor(59), ShouldEqual, VerdictPartial)
		So(VerdictFor(40), ShouldEqual, VerdictPartial)
		So(VerdictFor(39), ShouldEqual, VerdictOffTopic)
		So(VerdictFor(0), ShouldEqual, VerdictOffTopic)
	})
}

func TestEvaluateDegenerateAnswers(t *testing.T) {
	lx := backend(t)

	Convey("Given an empty transcript", t, func() {
		for _, text := range []string{"", "   \n\t", "..."} {
			res := Evaluate(lx, text, rateLimiterQuestion)

			So(res.Score, ShouldEqual, 0)
			So(res.Verdict, ShouldEqual, VerdictOffTopic)
			So(res.Reasons, ShouldResemble, []string{ReasonEmpty})
			So(res.MatchedKeywords, ShouldBeEmpty)
			So(len(res.MissingKeywords), ShouldEqual, MaxListed)
		}
	})

	Convey("Given an answer with fewer than ten meaningful tokens", t, func() {
		res := Evaluate(lx, "I don't know, I'm not sure about this topic.", rateLimiterQuestion)

		So(res.Score, ShouldEqual, ShortAnswerScore)
		So(res.Verdict, ShouldEqual, VerdictPartial)
		So(res.Reasons, ShouldResemble, []string{ReasonTooShort})
		So(res.MatchedKeywords, ShouldBeEmpty)
		So(res.MissingKeywords[0], ShouldEqual, "design")

		Convey("Then off-topic markers are still reported", func() {
			So(res.OffTopicMarkers, ShouldResemble, []string{"i don't know", "i'm not sure"})
		})
	})

	Convey("Given a terse but keyword dense answer", t, func() {
		res := Evaluate(lx, "redis token bucket api middleware", rateLimiterQuestion)
		So(res.Score, ShouldEqual, 40)
		So(res.Verdict, ShouldEqual, VerdictPartial)
	})
}

func TestEvaluateStrongAnswer(t *testing.T) {
	lx := backend(t)

	Convey("Given a structured answer rich in role keywords", t, func() {
		res, b := Explain(lx, strongAnswer, rateLimiterQuestion)

		So(res.Verdict, ShouldEqual, VerdictOnTopic)
		So(res.Score, ShouldBeGreaterThanOrEqualTo, 75)
		So(res.Source, ShouldEqual, SourceLocal)
		So(b.Coverage, ShouldBeGreaterThanOrEqualTo, 70)
		So(b.RubricBonus, ShouldEqual, 15)
		So(b.HighRubricBoost, ShouldEqual, 20)
		So(b.KeywordBoost, ShouldEqual, 5)
		So(b.OffTopicPenalty, ShouldEqual, 0)
		So(b.VaguePenalty, ShouldEqual, 0)

		So(len(res.MatchedKeywords), ShouldEqual, MaxListed)
		So(res.MatchedKeywords[0], ShouldEqual, "design")
		So(res.MissingKeywords, ShouldContain, "describe")
		So(res.Reasons, ShouldContain, ReasonRubricBonus)
		So(res.Reasons, ShouldContain, ReasonStrongTerms)
		So(res.Reasons[len(res.Reasons)-1], ShouldEqual, ReasonOnTopic)
	})
}

func TestEvaluatePenalties(t *testing.T) {
	lx := backend(t)

	Convey("Given two answers of equal length differing by a non-answer phrase", t, func() {
		penalized, pb := Explain(lx, moderateBody+" I don't know, I'm not sure about this topic.", rateLimiterQuestion)
		neutral, nb := Explain(lx, moderateBody+" I do know, I am sure about this topic.", rateLimiterQuestion)

		So(pb.OffTopicPenalty, ShouldEqual, 10)
		So(nb.OffTopicPenalty, ShouldEqual, 0)
		So(penalized.OffTopicMarkers, ShouldHaveLength, 2)
		So(neutral.Score, ShouldBeLessThan, 100)
		So(penalized.Score, ShouldBeLessThan, neutral.Score)

		found := false
		for _, r := range penalized.Reasons {
			if strings.HasPrefix(r, "Off-topic markers found") {
				found = true
			}
		}
		So(found, ShouldBeTrue)
	})

	Convey("Given an answer drifting to unrelated topics", t, func() {
		_, b := Explain(lx, moderateBody+" Then we talked about football and the weather for a while.", rateLimiterQuestion)
		So(b.OffTopicPenalty, ShouldEqual, 10)
	})

	Convey("Given hedging language", t, func() {
		_, b := Explain(lx, moderateBody+" Maybe it was probably fine, I guess, I think.", rateLimiterQuestion)
		So(b.VaguePenalty, ShouldEqual, 5)
	})
}

func TestEvaluateBounds(t *testing.T) {
	Convey("Given many transcripts across every role", t, func() {
		texts := []string{
			"",
			"short one",
			strongAnswer,
			moderateBody,
			strings.Repeat("football music weather game ", 20),
			strings.Repeat("maybe probably i guess kind of sort of ", 15),
			strings.Repeat("state props hooks component render reconciliation key ", 10),
		}
		for _, r := range lexicon.Roles() {
			lx, err := lexicon.For(r)
			So(err, ShouldBeNil)
			q := lx.Questions()[0].Text
			for _, text := range texts {
				res := Evaluate(lx, text, q)
				So(res.Score, ShouldBeBetweenOrEqual, 0, 100)
				So(res.Verdict, ShouldEqual, VerdictFor(res.Score))
				So(res.Reasons, ShouldNotBeEmpty)
				So(len(res.MatchedKeywords), ShouldBeLessThanOrEqualTo, MaxListed)
				So(len(res.MissingKeywords), ShouldBeLessThanOrEqualTo, MaxListed)
			}
		}
	})

	Convey("Given the same input twice", t, func() {
		lx := backend(t)
		So(Evaluate(lx, strongAnswer, rateLimiterQuestion), ShouldResemble, Evaluate(lx, strongAnswer, rateLimiterQuestion))
	})
}

func TestRubricAdjustments(t *testing.T) {
	Convey("Given rubric scores", t, func() {
		So(RubricBonus(star.Scores{T: 51, A: 51, R: 51}), ShouldEqual, 15)
		So(RubricBonus(star.Scores{S: 100, T: 50, A: 51}), ShouldEqual, 5)
		So(RubricBonus(star.Scores{}), ShouldEqual, 0)

		So(HighRubricBoost(star.Scores{S: 100, T: 100, A: 100}), ShouldEqual, 20)
		So(HighRubricBoost(star.Scores{S: 80, T: 80, A: 50, R: 50}), ShouldEqual, 15)
		So(HighRubricBoost(star.Scores{S: 80, T: 80, A: 10, R: 10}), ShouldEqual, 0)
		So(HighRubricBoost(star.Scores{S: 74, T: 74, A: 74, R: 74}), ShouldEqual, 10)
		So(HighRubricBoost(star.Scores{}), ShouldEqual, 0)
	})
}

func TestRequiredKeywords(t *testing.T) {
	Convey("Given a question overlapping role keywords", t, func() {
		kws := RequiredKeywords(backend(t), "Explain the API middleware.")
		var names []string
		for _, k := range kws {
			names = append(names, k.Text)
		}
		So(names[:3], ShouldResemble, []string{"explain", "middleware", "api"})
		So(len(names), ShouldEqual, 2+TopRoleKeywords-1)
	})
}

func TestLocalScorer(t *testing.T) {
	Convey("Given the local scorer", t, func() {
		s := NewLocalScorer()

		Convey("When the role is unsupported", func() {
			_, err := s.Score(context.Background(), Input{Transcript: strongAnswer, Role: "cobol"})
			So(errors.Is(err, lexicon.ErrUnsupportedRole), ShouldBeTrue)
		})

		Convey("When the role is supported", func() {
			res, err := s.Score(context.Background(), Input{Transcript: strongAnswer, Question: rateLimiterQuestion, Role: lexicon.RoleBackendNode})
			So(err, ShouldBeNil)
			So(res.Verdict, ShouldEqual, VerdictOnTopic)
		})
	})
}

func TestResultClone(t *testing.T) {
	Convey("Given a result", t, func() {
		r := Result{Reasons: []string{"a"}, MatchedKeywords: []string{"b"}}
		c := r.Clone()
		c.Reasons[0] = "changed"
		So(r.Reasons[0], ShouldEqual, "a")
		So(c.MissingKeywords, ShouldNotBeNil)
	})
}
