package lexicon

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseRole(t *testing.T) {
	Convey("Given role identifiers", t, func() {
		Convey("When the identifier is known", func() {
			r, err := ParseRole(" Backend_Node ")
			So(err, ShouldBeNil)
			So(r, ShouldEqual, RoleBackendNode)
		})

		Convey("When the identifier is unknown", func() {
			_, err := ParseRole("cobol_mainframe")
			So(errors.Is(err, ErrUnsupportedRole), ShouldBeTrue)
		})

		Convey("Then every role has a lexicon and questions", func() {
			for _, r := range Roles() {
				lx, err := For(r)
				So(err, ShouldBeNil)
				So(lx.Label(), ShouldNotBeEmpty)
				So(lx.Skill(), ShouldNotBeEmpty)
				So(len(lx.Questions()), ShouldBeGreaterThanOrEqualTo, 10)
				So(len(lx.TopKeywords(15)), ShouldEqual, 15)
			}
		})

		Convey("Then For rejects roles outside the catalogue", func() {
			_, err := For(Role("nope"))
			So(errors.Is(err, ErrUnsupportedRole), ShouldBeTrue)
		})
	})
}

func TestWords(t *testing.T) {
	Convey("Given text with mixed case and punctuation", t, func() {
		So(Words("Hello,   WORLD!"), ShouldResemble, []string{"hello", "world"})

		Convey("Then apostrophes are dropped in both spellings", func() {
			So(Words("I don’t know"), ShouldResemble, []string{"i", "dont", "know"})
			So(Words("I don't know"), ShouldResemble, []string{"i", "dont", "know"})
		})

		Convey("Then percent signs become their own token", func() {
			So(Words("cut latency by 40%."), ShouldResemble, []string{"cut", "latency", "by", "40", "%"})
		})

		Convey("Then empty text has no words", func() {
			So(Words("  \n\t "), ShouldBeEmpty)
		})
	})
}

func TestTokenize(t *testing.T) {
	Convey("Given a sentence with stopwords and short words", t, func() {
		toks := Tokenize("We built an API so it can scale to the moon")
		So(toks, ShouldResemble, []string{"built", "api", "scale", "moon"})
	})
}

func TestStem(t *testing.T) {
	Convey("Given inflected words", t, func() {
		So(Stem("indexing"), ShouldEqual, "index")
		So(Stem("cached"), ShouldEqual, "cach")
		So(Stem("queries"), ShouldEqual, "querie")
		So(Stem("class"), ShouldEqual, "class")
		So(Stem("ing"), ShouldEqual, "ing")
		So(Stem("bus"), ShouldEqual, "bus")
	})
}

func TestPhraseMatching(t *testing.T) {
	Convey("Given tokenized text", t, func() {
		words := Words("Um, you know, the umbrella was, you know, wet. Um.")

		Convey("Then single words match only whole words", func() {
			So(CountPhrase(words, NewPhrase("um")), ShouldEqual, 2)
		})

		Convey("Then multi word phrases match contiguously", func() {
			So(CountPhrase(words, NewPhrase("you know")), ShouldEqual, 2)
			So(ContainsPhrase(words, NewPhrase("know you")), ShouldBeFalse)
		})

		Convey("Then empty phrases never match", func() {
			So(CountPhrase(words, Phrase{}), ShouldEqual, 0)
			So(ContainsPhrase(words, Phrase{}), ShouldBeFalse)
		})
	})
}

func TestSharedVocabulary(t *testing.T) {
	Convey("Given the shared vocabulary", t, func() {
		So(IsStopword("the"), ShouldBeTrue)
		So(IsStopword("database"), ShouldBeFalse)
		So(Fillers()[0].Text, ShouldEqual, "um")
		So(len(OffTopicPhrases()), ShouldBeGreaterThan, 0)
		So(len(VaguePhrases()), ShouldBeGreaterThan, 0)
		So(len(UnrelatedTopics()), ShouldBeGreaterThan, 0)

		star := Star()
		So(star.Situation, ShouldNotBeEmpty)
		So(star.Task, ShouldNotBeEmpty)
		So(star.Action, ShouldNotBeEmpty)
		So(star.Result, ShouldNotBeEmpty)

		Convey("Then returned slices are copies", func() {
			f := Fillers()
			f[0].Tokens[0] = "mutated"
			So(Fillers()[0].Tokens[0], ShouldEqual, "um")
		})
	})
}

func TestSynonymsAndQuestions(t *testing.T) {
	Convey("Given the backend lexicon", t, func() {
		lx, err := For(RoleBackendNode)
		So(err, ShouldBeNil)

		So(lx.Related("endpoint"), ShouldContain, "api")
		So(lx.Related("endpoint"), ShouldNotContain, "endpoint")
		So(lx.Related("zebra"), ShouldBeEmpty)

		q, ok := lx.Question("bn1")
		So(ok, ShouldBeTrue)
		So(q.Text, ShouldContainSubstring, "rate limiter")

		_, ok = lx.Question("missing")
		So(ok, ShouldBeFalse)
	})

	Convey("Given a question", t, func() {
		kws := QuestionKeywords("How do you design a rate limiter for an API? Describe your design.")
		So(kws, ShouldResemble, []string{"design", "rate", "limiter", "describe"})
	})
}
