package drill

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerator(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		a, b := newGenerator(7), newGenerator(7)

		Convey("Then equal seeds give equal scripts", func() {
			for i := 0; i < 20; i++ {
				sa, sb := a.next(), b.next()
				So(sa.skip, ShouldEqual, sb.skip)
				So(sa.chunks, ShouldResemble, sb.chunks)
				So(sa.headVariance, ShouldEqual, sb.headVariance)
			}
		})

		Convey("Then signals stay in range", func() {
			for i := 0; i < 50; i++ {
				s := a.next()
				So(s.headVariance, ShouldBeBetweenOrEqual, 0.0, 40.0)
				So(s.gazeDrift, ShouldBeBetweenOrEqual, 0.0, 0.4)
				So(s.durationSeconds, ShouldBeGreaterThanOrEqualTo, 0.0)
			}
		})
	})

	Convey("Given text to chunk", t, func() {
		text := "one two three four five six seven"
		parts := chunk(text, 3)

		So(parts, ShouldResemble, []string{"one two three", "four five six", "seven"})
		So(strings.Join(parts, " "), ShouldEqual, text)
		So(chunk("", 3), ShouldBeEmpty)
	})
}
