package emotion

import (
	"math"
	"sort"
)

// Score is the confidence a classifier assigns to one label.
type Score struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Percent returns the confidence as a percentage rounded to two decimals.
func (s Score) Percent() float64 {
	return math.Round(s.Confidence*10000) / 100
}

// Rank copies scores, clamps every confidence into [0,1] and sorts them by
// descending confidence. Ties keep their input order.
func Rank(scores []Score) []Score {
	ranked := make([]Score, len(scores))
	for i, s := range scores {
		ranked[i] = Score{Label: s.Label, Confidence: clamp01(s.Confidence)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	return ranked
}

// Softmax turns raw model logits into a probability distribution.
func Softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}
	maxLogit := float64(logits[0])
	for _, v := range logits[1:] {
		if float64(v) > maxLogit {
			maxLogit = float64(v)
		}
	}

	probs := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v) - maxLogit)
		probs[i] = e
		sum += e
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Normalize maps arbitrary non-negative weights onto the given label set and
// scales them to sum to one. Labels missing from weights get zero; weights for
// labels outside the set are ignored. When nothing carries weight the mass goes
// to Neutral if present, otherwise it is spread uniformly.
func Normalize(weights map[Label]float64, labels []Label) []Score {
	scores := make([]Score, len(labels))
	var sum float64
	for i, label := range labels {
		w := weights[label]
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			w = 0
		}
		scores[i] = Score{Label: label, Confidence: w}
		sum += w
	}

	if sum == 0 {
		for i := range scores {
			if scores[i].Label == Neutral {
				scores[i].Confidence = 1
				return scores
			}
		}
		for i := range scores {
			scores[i].Confidence = 1 / float64(len(scores))
		}
		return scores
	}

	for i := range scores {
		scores[i].Confidence /= sum
	}
	return scores
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
