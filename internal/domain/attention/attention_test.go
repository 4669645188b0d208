package attention

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAnalyze(t *testing.T) {
	Convey("Given no movement", t, func() {
		m := Analyze(0, 0)
		So(m.AttentionScore, ShouldEqual, 100)
		So(m.MovementRating, ShouldEqual, MovementStable)
	})

	Convey("Given small head variance", t, func() {
		m := Analyze(5, 0)
		So(m.AttentionScore, ShouldEqual, 97)
	})

	Convey("Given saturated signals", t, func() {
		m := Analyze(250, 80)
		So(m.AttentionScore, ShouldEqual, 0)
		So(m.MovementRating, ShouldEqual, MovementExcessive)
	})

	Convey("Given mixed signals", t, func() {
		m := Analyze(50, 25)
		So(m.AttentionScore, ShouldEqual, 50)
		So(m.MovementRating, ShouldEqual, MovementExcessive)
	})

	Convey("Given invalid inputs", t, func() {
		m := Analyze(-3, math.NaN())
		So(m.HeadVariance, ShouldEqual, 0)
		So(m.GazeDrift, ShouldEqual, 0)
		So(m.AttentionScore, ShouldEqual, 100)
	})
}

func TestRate(t *testing.T) {
	Convey("Given head variance boundaries", t, func() {
		So(Rate(19.9), ShouldEqual, MovementStable)
		So(Rate(20), ShouldEqual, MovementModerate)
		So(Rate(49.9), ShouldEqual, MovementModerate)
		So(Rate(50), ShouldEqual, MovementExcessive)
	})
}

func TestSuggestions(t *testing.T) {
	Convey("Given restless delivery", t, func() {
		s := Suggestions(Analyze(80, 40))
		So(s, ShouldHaveLength, 3)
	})

	Convey("Given steady delivery", t, func() {
		So(Suggestions(Analyze(0, 0)), ShouldHaveLength, 1)
	})
}
