// Package textmetrics derives speaking metrics from a transcript: word
// count, pace and filler usage.
package textmetrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/rehearse/internal/domain/lexicon"
)

// Pace boundaries in words per minute, both inclusive for "good".
const (
	PaceSlowBelow = 110
	PaceFastAbove = 150
)

// PaceRating classifies speaking speed.
type PaceRating string

const (
	PaceSlow PaceRating = "slow"
	PaceGood PaceRating = "good"
	PaceFast PaceRating = "fast"
)

// FillerCount is one entry of the filler breakdown.
type FillerCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Metrics summarises the delivery of one answer.
type Metrics struct {
	WordCount       int           `json:"word_count"`
	WPM             int           `json:"wpm"`
	FillerCount     int           `json:"filler_count"`
	FillerRate      float64       `json:"filler_rate"`
	PaceRating      PaceRating    `json:"pace_rating"`
	FillerBreakdown []FillerCount `json:"filler_breakdown"`
}

// MinDurationSeconds is the shortest duration rates are computed for.
// Anything shorter is treated as unknown.
const MinDurationSeconds = 1.0

// Analyze computes delivery metrics. It never fails; an empty transcript
// or a duration under MinDurationSeconds yields zero rates.
func Analyze(transcript string, durationSeconds float64) Metrics {
	m := Metrics{
		WordCount:       WordCount(transcript),
		FillerBreakdown: []FillerCount{},
	}

	words := lexicon.Words(transcript)
	for _, f := range lexicon.Fillers() {
		if n := lexicon.CountPhrase(words, f); n > 0 {
			m.FillerCount += n
			m.FillerBreakdown = append(m.FillerBreakdown, FillerCount{Word: f.Text, Count: n})
		}
	}
	// Stable sort keeps vocabulary order among equal counts.
	sort.SliceStable(m.FillerBreakdown, func(i, j int) bool {
		return m.FillerBreakdown[i].Count > m.FillerBreakdown[j].Count
	})

	if durationSeconds >= MinDurationSeconds {
		minutes := durationSeconds / 60
		m.WPM = int(math.Round(float64(m.WordCount) / minutes))
		m.FillerRate = float64(m.FillerCount) / minutes
	}
	m.PaceRating = Pace(m.WPM)
	return m
}

// WordCount counts whitespace delimited tokens.
func WordCount(transcript string) int {
	return len(strings.Fields(transcript))
}

// Pace rates a words-per-minute figure.
func Pace(wpm int) PaceRating {
	switch {
	case wpm < PaceSlowBelow:
		return PaceSlow
	case wpm > PaceFastAbove:
		return PaceFast
	default:
		return PaceGood
	}
}

// Suggestions returns delivery tips for m.
func Suggestions(m Metrics) []string {
	var out []string
	switch m.PaceRating {
	case PaceSlow:
		out = append(out, "Try speaking a bit faster. Aim for 110-150 words per minute.")
	case PaceFast:
		out = append(out, "Slow down slightly; you may be rushing. Aim for 110-150 words per minute.")
	}
	switch {
	case m.FillerRate > 5:
		out = append(out, fmt.Sprintf("Reduce filler words (%d detected). Pause instead of using fillers.", m.FillerCount))
	case m.FillerRate > 2:
		out = append(out, "Good job keeping filler words low. Try to eliminate a few more.")
	}
	if m.WordCount < 50 {
		out = append(out, "Your answer was quite brief. Try to provide more detail and examples.")
	}
	return out
}
