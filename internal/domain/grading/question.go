// Package grading combines component metrics into per-question and
// per-session grades.
package grading

import (
	"math"

	"github.com/okian/rehearse/internal/domain/model"
)

// Composite weights.
const (
	WeightRelevance = 0.35
	WeightStar      = 0.35
	WeightAttention = 0.15
	WeightPace      = 0.10
	WeightFiller    = 0.05
)

// Pace curve: full marks inside the good band, linear ramps to zero at
// the outer limits.
const (
	paceGoodMin  = 110
	paceGoodMax  = 150
	paceFloorMin = 70
	paceFloorMax = 200

	fillerZeroAt = 10.0
)

// PaceScore maps words per minute to [0,100].
func PaceScore(wpm int) int {
	if wpm >= paceGoodMin && wpm <= paceGoodMax {
		return 100
	}
	left := float64(wpm-paceFloorMin) / float64(paceGoodMin-paceFloorMin)
	right := float64(paceFloorMax-wpm) / float64(paceFloorMax-paceGoodMax)
	return clampScore(100 * math.Min(left, right))
}

// FillerScore maps fillers per minute to [0,100]; ten or more per minute
// scores zero.
func FillerScore(perMinute float64) int {
	return clampScore(100 * (1 - perMinute/fillerZeroAt))
}

// LetterGrade maps a composite score to a letter.
func LetterGrade(score int) model.Grade {
	switch {
	case score >= 90:
		return model.GradeA
	case score >= 80:
		return model.GradeB
	case score >= 70:
		return model.GradeC
	case score >= 60:
		return model.GradeD
	default:
		return model.GradeF
	}
}

// Composite computes the weighted score of an evaluated question.
func Composite(q *model.QuestionResult) int {
	v := WeightRelevance*float64(q.Relevance.Score) +
		WeightStar*q.Star.Scores.Mean() +
		WeightAttention*float64(q.Attention.AttentionScore) +
		WeightPace*float64(PaceScore(q.TextMetrics.WPM)) +
		WeightFiller*float64(FillerScore(q.TextMetrics.FillerRate))
	return clampScore(v)
}

// Grade fills OverallScore and Grade on q unless already present and
// returns them. Skipped questions grade 0/F. Calling it again returns the
// stored values unchanged.
func Grade(q *model.QuestionResult) (int, model.Grade) {
	if q.OverallScore != nil {
		return *q.OverallScore, q.Grade
	}
	score := 0
	if q.Status != model.StatusSkipped {
		score = Composite(q)
	}
	q.OverallScore = &score
	q.Grade = LetterGrade(score)
	return score, q.Grade
}

func clampScore(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
