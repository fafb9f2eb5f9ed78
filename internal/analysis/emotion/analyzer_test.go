package emotion

import (
	"math"
	"testing"
)

func TestAnalyzeExcitedUserIsJoy(t *testing.T) {
	decision := Analyze("I got the job, I'm so excited!")
	if decision.Emotion != Joy {
		t.Fatalf("expected joy emotion, got %s", decision.Emotion)
	}
	if decision.Score <= 0 {
		t.Fatalf("expected positive score, got %d", decision.Score)
	}
}

func TestAnalyzePlainTextIsNeutral(t *testing.T) {
	decision := Analyze("The meeting is at three o'clock.")
	if decision.Emotion != Neutral {
		t.Fatalf("expected neutral emotion, got %s", decision.Emotion)
	}
}

func TestAnalyzeRespectsWordBoundaries(t *testing.T) {
	decision := Analyze("I made dinner")
	if decision.Emotion == Anger {
		t.Fatalf("expected 'made' not to match anger keyword 'mad'")
	}
}

func TestAnalyzeScaredUserIsFear(t *testing.T) {
	decision := Analyze("I'm so scared and anxious about tomorrow")
	if decision.Emotion != Fear {
		t.Fatalf("expected fear emotion, got %s", decision.Emotion)
	}
}

func TestDistributionIsProbability(t *testing.T) {
	labels := DefaultModelLabels()
	scores := Distribution("I feel so lonely and sad today", labels)

	if len(scores) != len(labels) {
		t.Fatalf("expected %d scores, got %d", len(labels), len(scores))
	}
	var sum float64
	var top Score
	for _, s := range scores {
		if s.Confidence < 0 || s.Confidence > 1 {
			t.Fatalf("confidence out of range for %s: %f", s.Label, s.Confidence)
		}
		if s.Confidence > top.Confidence {
			top = s
		}
		sum += s.Confidence
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("expected scores to sum to 1, got %f", sum)
	}
	if top.Label != Sadness {
		t.Fatalf("expected sadness on top, got %s", top.Label)
	}
}

func TestDistributionEmptyTextGoesNeutral(t *testing.T) {
	scores := Distribution("", DefaultModelLabels())
	for _, s := range scores {
		if s.Label == Neutral && s.Confidence != 1 {
			t.Fatalf("expected neutral to carry all mass, got %f", s.Confidence)
		}
	}
}
