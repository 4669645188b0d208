package textmetrics

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWordCount(t *testing.T) {
	Convey("Given transcripts", t, func() {
		So(WordCount(""), ShouldEqual, 0)
		So(WordCount("Hello   world"), ShouldEqual, 2)
		So(WordCount("  \n\tone\ttwo\nthree "), ShouldEqual, 3)
	})
}

func TestPace(t *testing.T) {
	Convey("Given words per minute", t, func() {
		So(Pace(100), ShouldEqual, PaceSlow)
		So(Pace(130), ShouldEqual, PaceGood)
		So(Pace(160), ShouldEqual, PaceFast)

		Convey("Then the boundaries are inclusive for good", func() {
			So(Pace(109), ShouldEqual, PaceSlow)
			So(Pace(110), ShouldEqual, PaceGood)
			So(Pace(150), ShouldEqual, PaceGood)
			So(Pace(151), ShouldEqual, PaceFast)
		})
	})
}

func TestAnalyze(t *testing.T) {
	Convey("Given a transcript of 120 words over one minute", t, func() {
		text := strings.TrimSpace(strings.Repeat("word ", 120))
		m := Analyze(text, 60)

		So(m.WordCount, ShouldEqual, 120)
		So(m.WPM, ShouldEqual, 120)
		So(m.PaceRating, ShouldEqual, PaceGood)
		So(m.FillerCount, ShouldEqual, 0)
		So(m.FillerBreakdown, ShouldBeEmpty)
	})

	Convey("Given a zero duration", t, func() {
		m := Analyze("um this is like fine", 0)

		So(m.WPM, ShouldEqual, 0)
		So(m.FillerRate, ShouldEqual, 0)
		So(m.FillerCount, ShouldEqual, 2)
		So(m.PaceRating, ShouldEqual, PaceSlow)
	})

	Convey("Given a vanishingly small duration", t, func() {
		m := Analyze("we shipped the cache layer", 1e-18)

		So(m.WordCount, ShouldEqual, 5)
		So(m.WPM, ShouldEqual, 0)
		So(m.FillerRate, ShouldEqual, 0)
	})

	Convey("Given a duration of exactly one second", t, func() {
		m := Analyze("we shipped the cache layer", MinDurationSeconds)

		So(m.WPM, ShouldEqual, 300)
		So(m.PaceRating, ShouldEqual, PaceFast)
	})

	Convey("Given an empty transcript", t, func() {
		m := Analyze("", 30)

		So(m.WordCount, ShouldEqual, 0)
		So(m.WPM, ShouldEqual, 0)
		So(m.FillerCount, ShouldEqual, 0)
		So(m.FillerBreakdown, ShouldNotBeNil)
	})

	Convey("Given words that merely contain a filler", t, func() {
		m := Analyze("umbrella is not a filler", 10)
		So(m.FillerCount, ShouldEqual, 0)
	})

	Convey("Given several fillers", t, func() {
		m := Analyze("So, um, I mean, you know, it was um like basically you know done", 30)

		So(m.FillerCount, ShouldEqual, 8)
		So(m.FillerRate, ShouldAlmostEqual, 16.0, 0.0001)
		So(m.FillerBreakdown[0], ShouldResemble, FillerCount{Word: "um", Count: 2})
		So(m.FillerBreakdown[1], ShouldResemble, FillerCount{Word: "you know", Count: 2})
		So(m.FillerBreakdown[2].Word, ShouldEqual, "like")
	})
}

func TestSuggestions(t *testing.T) {
	Convey("Given slow brief delivery with many fillers", t, func() {
		s := Suggestions(Metrics{WordCount: 20, PaceRating: PaceSlow, FillerCount: 9, FillerRate: 9})
		So(s, ShouldHaveLength, 3)
		So(s[1], ShouldContainSubstring, "9 detected")
	})

	Convey("Given good delivery", t, func() {
		So(Suggestions(Metrics{WordCount: 200, PaceRating: PaceGood}), ShouldBeEmpty)
	})
}
