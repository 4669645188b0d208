// Package attention turns head-tracking signals into an attention score.
package attention

import "math"

// Input domains: signals beyond these saturate.
const (
	MaxHeadVariance = 100.0
	MaxGazeDrift    = 50.0

	headWeight = 0.7
	gazeWeight = 0.3

	stableBelow   = 20
	moderateBelow = 50
)

// Movement classifies head movement.
type Movement string

const (
	MovementStable    Movement = "stable"
	MovementModerate  Movement = "moderate"
	MovementExcessive Movement = "excessive"
)

// Metrics is the attention assessment of one answer.
type Metrics struct {
	HeadVariance   float64  `json:"head_variance"`
	GazeDrift      float64  `json:"gaze_drift"`
	AttentionScore int      `json:"attention_score"`
	MovementRating Movement `json:"movement_rating"`
}

// Analyze scores steadiness. Zero signals mean no movement was observed
// and score 100. Negative and NaN inputs are treated as zero.
func Analyze(headVariance, gazeDrift float64) Metrics {
	head := sanitize(headVariance)
	gaze := sanitize(gazeDrift)

	headScore := invert(head, MaxHeadVariance)
	gazeScore := invert(gaze, MaxGazeDrift)
	score := math.Round(headWeight*headScore + gazeWeight*gazeScore)

	return Metrics{
		HeadVariance:   head,
		GazeDrift:      gaze,
		AttentionScore: int(math.Max(0, math.Min(100, score))),
		MovementRating: Rate(head),
	}
}

// Rate classifies a head variance value.
func Rate(headVariance float64) Movement {
	switch {
	case headVariance < stableBelow:
		return MovementStable
	case headVariance < moderateBelow:
		return MovementModerate
	default:
		return MovementExcessive
	}
}

// Suggestions returns coaching tips for m.
func Suggestions(m Metrics) []string {
	var out []string
	switch {
	case m.AttentionScore >= 80:
		out = append(out, "Excellent attention and stability. You maintained great eye contact.")
	case m.AttentionScore >= 60:
		out = append(out, "Good attention overall. Try to minimize head movement for even better stability.")
	default:
		out = append(out, "Work on keeping a stable head position and consistent eye contact with the camera.")
	}
	if m.MovementRating == MovementExcessive {
		out = append(out, "You moved your head quite a bit. Practice keeping a more stable, centered position.")
	}
	if m.GazeDrift > 30 {
		out = append(out, "Your gaze wandered. Focus on looking directly at the camera to simulate eye contact.")
	}
	return out
}

// invert maps [0, limit] onto [100, 0].
func invert(v, limit float64) float64 {
	return 100 * (1 - math.Min(v, limit)/limit)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
