package star

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestProgressive(t *testing.T) {
	Convey("Given match counts", t, func() {
		So(Progressive(0), ShouldEqual, 0)
		So(Progressive(1), ShouldEqual, 40)
		So(Progressive(2), ShouldEqual, 70)
		So(Progressive(3), ShouldEqual, 100)
		So(Progressive(12), ShouldEqual, 100)
	})
}

func TestLengthBonus(t *testing.T) {
	Convey("Given sentences", t, func() {
		So(LengthBonus(""), ShouldEqual, 0)
		So(LengthBonus("One. Two! Three?"), ShouldEqual, 6)
		So(LengthBonus("...!!"), ShouldEqual, 0)
		So(LengthBonus("a. b. c. d. e. f. g. h. i. j. k. l."), ShouldEqual, 20)
	})
}

func TestAnalyze(t *testing.T) {
	Convey("Given an empty transcript", t, func() {
		a := Analyze("")

		So(a.Scores, ShouldResemble, Scores{})
		So(a.Missing, ShouldResemble, []string{Situation, Task, Action, Result})
		So(len(a.Suggestions), ShouldEqual, 5)
	})

	Convey("Given three situation cues in a single sentence", t, func() {
		a := Analyze("on my team the project background")

		So(a.Scores.S, ShouldEqual, 100)
		So(a.Scores.T, ShouldEqual, 2)
		So(a.Missing, ShouldNotContain, Situation)
	})

	Convey("Given a complete STAR narrative", t, func() {
		a := Analyze("At my company our team owned a payments project. " +
			"The goal was to fix a latency problem and I was responsible for the challenge. " +
			"First I profiled the service, then I implemented a cache and refactored the queries. " +
			"As a result we reduced latency by 40% and improved throughput.")

		So(a.Scores.S, ShouldEqual, 100)
		So(a.Scores.T, ShouldEqual, 100)
		So(a.Scores.A, ShouldEqual, 100)
		So(a.Scores.R, ShouldEqual, 100)
		So(a.Missing, ShouldBeEmpty)
		So(a.Suggestions, ShouldHaveLength, 1)
		So(a.Scores.Overall(), ShouldEqual, 100)
	})

	Convey("Given a transcript missing two components", t, func() {
		a := Analyze("Our team had a project. The goal was a problem we needed to handle.")

		So(a.Missing, ShouldResemble, []string{Action, Result})
		So(a.Suggestions[len(a.Suggestions)-1], ShouldContainSubstring, "Action and Result")
	})
}

func TestScores(t *testing.T) {
	Convey("Given scores", t, func() {
		s := Scores{S: 100, T: 70, A: 40, R: 41}
		So(s.Mean(), ShouldAlmostEqual, 62.75, 0.0001)
		So(s.Overall(), ShouldEqual, 63)
	})
}
