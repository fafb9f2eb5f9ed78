package emotion

import (
	"strings"
	"testing"

	analysis "github.com/zhouzirui/neuroaid/backend/internal/analysis/emotion"
)

func TestParseScoresFromWrappedJSON(t *testing.T) {
	labels := []analysis.Label{analysis.Joy, analysis.Sadness, analysis.Neutral}
	content := "Sure! ```json\n{\"scores\": {\"JOY\": 0.6, \"sadness\": 0.2, \"neutral\": 0.2, \"love\": 0.4}}\n```"

	scores, err := parseScores(content, labels)
	if err != nil {
		t.Fatalf("parseScores err: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	if scores[0].Label != analysis.Joy || scores[0].Confidence < 0.59 || scores[0].Confidence > 0.61 {
		t.Fatalf("unexpected joy score: %+v", scores[0])
	}
}

func TestParseScoresNormalizesWeights(t *testing.T) {
	labels := []analysis.Label{analysis.Anger, analysis.Fear}
	scores, err := parseScores(`{"scores":{"anger":3,"fear":1}}`, labels)
	if err != nil {
		t.Fatalf("parseScores err: %v", err)
	}
	if scores[0].Confidence != 0.75 || scores[1].Confidence != 0.25 {
		t.Fatalf("unexpected normalization: %+v", scores)
	}
}

func TestParseScoresSingleLabel(t *testing.T) {
	labels := analysis.DefaultModelLabels()
	scores, err := parseScores(`{"label":"Surprise"}`, labels)
	if err != nil {
		t.Fatalf("parseScores err: %v", err)
	}
	for _, s := range scores {
		if s.Label == analysis.Surprise && s.Confidence != 1 {
			t.Fatalf("expected one-hot surprise, got %+v", scores)
		}
	}
}

func TestParseScoresRejectsGarbage(t *testing.T) {
	labels := analysis.DefaultModelLabels()
	for _, content := range []string{"", "joy", "{not json}", `{"scores":{"optimism":1}}`} {
		if _, err := parseScores(content, labels); err == nil {
			t.Fatalf("expected error for %q", content)
		}
	}
}

func TestSystemPromptListsLabels(t *testing.T) {
	prompt := systemPrompt(analysis.DefaultModelLabels())
	for _, label := range analysis.DefaultModelLabels() {
		if !strings.Contains(prompt, string(label)) {
			t.Fatalf("prompt is missing %s", label)
		}
	}
}

func TestTruncateTokensKeepsEndToken(t *testing.T) {
	ids, mask := truncateTokens([]int{0, 11, 12, 13, 14, 2}, nil, 4)
	if len(ids) != 4 || ids[0] != 0 || ids[3] != 2 {
		t.Fatalf("unexpected truncation: %v", ids)
	}
	if len(mask) != 4 || mask[3] != 1 {
		t.Fatalf("unexpected mask: %v", mask)
	}

	short, _ := truncateTokens([]int{0, 5, 2}, []int{1, 1, 1}, 8)
	if len(short) != 3 {
		t.Fatalf("short input must be untouched: %v", short)
	}
}
