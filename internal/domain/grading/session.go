package grading

import (
	"math"

	"github.com/okian/rehearse/internal/domain/model"
)

// Summary thresholds.
const (
	strongOverallFrom = 80
	relevanceOKFrom   = 70
	starOKFrom        = 65
	attentionOKFrom   = 65
	fillerHighAbove   = 5.0
)

// Summarize computes the session overall from its question results. The
// composite and every aggregate average only answered (non-skipped)
// questions; with none answered the session scores 0/F.
func Summarize(questions []model.QuestionResult) model.Overall {
	var (
		agg                                 model.Aggregates
		composite, wpm, att, rel, st, fills float64
	)
	for i := range questions {
		q := questions[i]
		if q.Status == model.StatusSkipped {
			agg.SkippedCount++
			continue
		}
		agg.AnsweredCount++
		score, _ := Grade(&q)
		composite += float64(score)
		wpm += float64(q.TextMetrics.WPM)
		att += float64(q.Attention.AttentionScore)
		rel += float64(q.Relevance.Score)
		st += q.Star.Scores.Mean()
		fills += q.TextMetrics.FillerRate
	}

	overall := model.Overall{Grade: model.GradeF}
	var means rawMeans
	if n := float64(agg.AnsweredCount); n > 0 {
		means = rawMeans{relevance: rel / n, star: st / n, attention: att / n, fillerPerMin: fills / n}
		overall.Score = int(math.Round(composite / n))
		overall.Grade = LetterGrade(overall.Score)
		agg.AvgWPM = int(math.Round(wpm / n))
		agg.AvgAttention = int(math.Round(means.attention))
		agg.AvgRelevance = int(math.Round(means.relevance))
		agg.StarMean = int(math.Round(means.star))
		agg.FillerPerMin = math.Round(means.fillerPerMin*10) / 10
	}
	overall.Aggregates = agg
	overall.Summary = summaryLines(overall.Score, means)
	return overall
}

// rawMeans are the unrounded averages the summary thresholds apply to.
type rawMeans struct {
	relevance, star, attention, fillerPerMin float64
}

func summaryLines(score int, m rawMeans) []string {
	pick := func(bad bool, ifBad, ifGood string) string {
		if bad {
			return ifBad
		}
		return ifGood
	}
	return []string{
		pick(score < strongOverallFrom, "Needs improvement overall.", "Strong overall performance."),
		pick(m.relevance < relevanceOKFrom, "Work on staying on-topic to the prompt.", "On-topic content was solid."),
		pick(m.star < starOKFrom, "Improve STAR completeness, especially Task and Result.", "STAR structure was generally complete."),
		pick(m.attention < attentionOKFrom, "Increase head and eye stability.", "Attention was acceptable."),
		pick(m.fillerPerMin > fillerHighAbove, "Reduce filler words.", "Filler words were under control."),
	}
}
