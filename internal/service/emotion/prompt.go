package emotion

import (
	"encoding/json"
	"fmt"
	"strings"

	analysis "github.com/zhouzirui/neuroaid/backend/internal/analysis/emotion"
)

// classifierPayload is the JSON object chat models are asked to return.
type classifierPayload struct {
	Scores map[string]float64 `json:"scores"`
	Label  string             `json:"label"`
}

// systemPrompt asks a chat model to behave like a text-classification pipeline
// that returns scores for every label.
func systemPrompt(labels []analysis.Label) string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = string(l)
	}

	var b strings.Builder
	b.WriteString("You are an emotion classifier. Read the user's text and estimate how likely it expresses each of these emotions: ")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(".\nReturn only one JSON object with a single field \"scores\" mapping every emotion above to a probability between 0 and 1. ")
	b.WriteString("The probabilities must sum to 1. Do not add any other text.")
	return b.String()
}

// parseScores extracts the classifier JSON from a chat reply and maps it onto
// the fixed label set. A bare {"label": "..."} reply becomes a one-hot distribution.
func parseScores(content string, labels []analysis.Label) ([]analysis.Score, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &classifierPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, fmt.Errorf("decode classifier output: %w", err)
	}

	weights := make(map[analysis.Label]float64, len(payload.Scores))
	for raw, score := range payload.Scores {
		weights[analysis.ParseLabel(raw)] += score
	}
	if len(weights) == 0 && payload.Label != "" {
		weights[analysis.ParseLabel(payload.Label)] = 1
	}

	known := false
	for _, label := range labels {
		if weights[label] > 0 {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("classifier output names none of the expected labels")
	}

	return analysis.Normalize(weights, labels), nil
}
