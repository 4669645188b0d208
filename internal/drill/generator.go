package drill

import (
	"math/rand/v2"
	"strings"
	"sync"
)

// Answer tiers. Each template is split into chunks the way a speech
// recogniser would deliver it.
var (
	strongAnswers = []string{
		"At my previous job our nightly reports were timing out as data grew. " +
			"I was responsible for bringing the runtime back under an hour. " +
			"I profiled the slowest queries, added the missing indexes and split the job into batches. " +
			"As a result the run finished in twenty minutes and we stopped missing the morning deadline.",
		"In one project the release process kept breaking on Fridays. " +
			"My goal was to make deployments boring again. " +
			"I implemented automated checks in the pipeline and built a rollback script. " +
			"The outcome was zero failed releases for the next quarter and the team shipped twice as often.",
	}
	averageAnswers = []string{
		"I think I would start by looking at the logs and then try a few things until it works. " +
			"Usually we talk as a team and pick the simplest option.",
		"We had a similar problem once and I fixed it by changing some settings. " +
			"It was fine after that and nobody complained.",
	}
	weakAnswers = []string{
		"um so like I guess it depends, you know, basically stuff like that",
		"uh I am not sure honestly",
		"",
	}
)

// step is one scripted question of an interview.
type step struct {
	chunks          []string
	skip            bool
	durationSeconds float64
	headVariance    float64
	gazeDrift       float64
}

// generator produces interview scripts. It is safe for concurrent use.
type generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newGenerator(seed uint64) *generator {
	return &generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// next scripts one answer.
func (g *generator) next() step {
	g.mu.Lock()
	defer g.mu.Unlock()

	roll := g.rnd.Float64()
	var text string
	switch {
	case roll < 0.05:
		return step{skip: true}
	case roll < 0.45:
		text = strongAnswers[g.rnd.IntN(len(strongAnswers))]
	case roll < 0.8:
		text = averageAnswers[g.rnd.IntN(len(averageAnswers))]
	default:
		text = weakAnswers[g.rnd.IntN(len(weakAnswers))]
	}

	words := len(strings.Fields(text))
	// Aim for 90 to 170 words per minute.
	wpm := 90 + g.rnd.Float64()*80
	return step{
		chunks:          chunk(text, 6),
		durationSeconds: float64(words) / wpm * 60,
		headVariance:    g.rnd.Float64() * 40,
		gazeDrift:       g.rnd.Float64() * 0.4,
	}
}

// chunk splits text into pieces of at most n words.
func chunk(text string, n int) []string {
	words := strings.Fields(text)
	var out []string
	for len(words) > 0 {
		k := min(n, len(words))
		out = append(out, strings.Join(words[:k], " "))
		words = words[k:]
	}
	return out
}
