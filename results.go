package qlearn

import (
	"fmt"
)

// Outcome is the result of an episode from the learner's point of view.
type Outcome int

const (
	Win Outcome = iota
	Loss
	Draw
	Illegal // The learner attempted to mark an occupied cell.
)

var outcomeStr = [...]string{
	"win",
	"loss",
	"draw",
	"illegal",
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeStr) {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}

	return outcomeStr[o]
}

// Results accumulates the outcomes of a batch of training episodes.
type Results struct {
	Wins    int
	Losses  int
	Draws   int
	Illegal int

	// Outcomes of every episode, in the order they were played.
	Outcomes []Outcome
}

// Add records the outcome of one more episode.
func (r *Results) Add(o Outcome) {
	switch o {
	case Win:
		r.Wins++
	case Loss:
		r.Losses++
	case Draw:
		r.Draws++
	case Illegal:
		r.Illegal++
	}

	r.Outcomes = append(r.Outcomes, o)
}

// Merge appends the outcomes of other to r.
func (r *Results) Merge(other *Results) {
	for _, o := range other.Outcomes {
		r.Add(o)
	}
}

// Episodes returns the number of recorded episodes.
func (r *Results) Episodes() int {
	return len(r.Outcomes)
}

// NonLossRate returns the fraction of the last n episodes that the learner
// won or drew. If n <= 0 or exceeds the number of episodes, all are used.
func (r *Results) NonLossRate(n int) float64 {
	return rate(r.last(n), Win, Draw)
}

// IllegalRate returns the fraction of the last n episodes that ended
// with an illegal move by the learner.
func (r *Results) IllegalRate(n int) float64 {
	return rate(r.last(n), Illegal)
}

// NonLossRateEvery returns the non-loss rate of each complete block
// of m consecutive episodes.
func (r *Results) NonLossRateEvery(m int) []float64 {
	if m <= 0 {
		return nil
	}

	var result []float64
	for end := m; end <= len(r.Outcomes); end += m {
		result = append(result, rate(r.Outcomes[end-m:end], Win, Draw))
	}

	return result
}

// String implements fmt.Stringer.
func (r *Results) String() string {
	return fmt.Sprintf("{episodes: %d, win: %d, loss: %d, draw: %d, illegal: %d}",
		r.Episodes(), r.Wins, r.Losses, r.Draws, r.Illegal)
}

func (r *Results) last(n int) []Outcome {
	if n <= 0 || n > len(r.Outcomes) {
		return r.Outcomes
	}

	return r.Outcomes[len(r.Outcomes)-n:]
}

func rate(outcomes []Outcome, match ...Outcome) float64 {
	if len(outcomes) == 0 {
		return 0
	}

	n := 0
	for _, o := range outcomes {
		for _, m := range match {
			if o == m {
				n++
				break
			}
		}
	}

	return float64(n) / float64(len(outcomes))
}
