// Package star scores how well an answer follows the Situation, Task,
// Action, Result narrative.
package star

import (
	"math"
	"regexp"
	"strings"

	"github.com/okian/rehearse/internal/domain/lexicon"
)

const (
	// MissingBelow marks a component as missing.
	MissingBelow = 30
	maxScore     = 100
	maxBonus     = 20
	bonusPerSent = 2
)

// Component names, used in Missing.
const (
	Situation = "Situation"
	Task      = "Task"
	Action    = "Action"
	Result    = "Result"
)

// Scores holds per component scores in [0,100].
type Scores struct {
	S int `json:"S"`
	T int `json:"T"`
	A int `json:"A"`
	R int `json:"R"`
}

// Mean returns the unrounded mean of the four components.
func (s Scores) Mean() float64 {
	return float64(s.S+s.T+s.A+s.R) / 4
}

// Overall returns the rounded mean.
func (s Scores) Overall() int {
	return int(math.Round(s.Mean()))
}

// Analysis is the rubric outcome for one transcript.
type Analysis struct {
	Scores      Scores   `json:"scores"`
	Missing     []string `json:"missing"`
	Suggestions []string `json:"suggestions"`
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

var fixes = map[string]string{
	Situation: "Start with clear context: describe the situation, project, or environment.",
	Task:      "Clarify your specific task or the challenge you faced.",
	Action:    `Detail the actions you took. Use "I" statements and describe your process step by step.`,
	Result:    "End with measurable results or outcomes. Use metrics, percentages, or concrete achievements.",
}

// Analyze scores the transcript and lists what is missing. There is
// always at least one suggestion.
func Analyze(transcript string) Analysis {
	words := lexicon.Words(transcript)
	cues := lexicon.Star()
	bonus := LengthBonus(transcript)

	s := Scores{
		S: withBonus(Progressive(matches(words, cues.Situation)), bonus),
		T: withBonus(Progressive(matches(words, cues.Task)), bonus),
		A: withBonus(Progressive(matches(words, cues.Action)), bonus),
		R: withBonus(Progressive(matches(words, cues.Result)), bonus),
	}

	a := Analysis{Scores: s, Missing: []string{}}
	for _, c := range []struct {
		name  string
		score int
	}{{Situation, s.S}, {Task, s.T}, {Action, s.A}, {Result, s.R}} {
		if c.score < MissingBelow {
			a.Missing = append(a.Missing, c.name)
			a.Suggestions = append(a.Suggestions, fixes[c.name])
		}
	}

	switch n := len(a.Missing); {
	case n == 0:
		a.Suggestions = append(a.Suggestions, "Great job covering all STAR components. Keep being specific and detailed.")
	case n <= 2:
		a.Suggestions = append(a.Suggestions, "Good structure overall. Strengthen the "+strings.Join(a.Missing, " and ")+" sections.")
	default:
		a.Suggestions = append(a.Suggestions, "Use the STAR framework (Situation, Task, Action, Result) to structure your answer.")
	}
	return a
}

// Progressive maps a distinct match count to a base score: 0, 40, 70, 100.
func Progressive(n int) int {
	switch {
	case n <= 0:
		return 0
	case n == 1:
		return 40
	case n == 2:
		return 70
	default:
		return maxScore
	}
}

// LengthBonus rewards structured answers: two points per sentence, up to 20.
func LengthBonus(transcript string) int {
	n := 0
	for _, seg := range sentenceSplit.Split(transcript, -1) {
		if strings.TrimSpace(seg) != "" {
			n++
		}
	}
	return min(n*bonusPerSent, maxBonus)
}

func matches(words []string, cues []lexicon.Phrase) int {
	n := 0
	for _, c := range cues {
		if lexicon.ContainsPhrase(words, c) {
			n++
		}
	}
	return n
}

func withBonus(base, bonus int) int {
	return min(base+bonus, maxScore)
}
