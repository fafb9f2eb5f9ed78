package emotion

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Label names an affective category predicted by a classifier.
type Label string

// Labels covered by the canned response table. The first seven are also the
// output vocabulary of the default model; the rest are colloquial variants used
// by other emotion datasets and models.
const (
	Joy      Label = "joy"
	Sadness  Label = "sadness"
	Anger    Label = "anger"
	Fear     Label = "fear"
	Love     Label = "love"
	Surprise Label = "surprise"
	Neutral  Label = "neutral"
	Others   Label = "others"
	Happy    Label = "happy"
	Sad      Label = "sad"
	Angry    Label = "angry"
	Disgust  Label = "disgust"
	Calm     Label = "calm"
)

// DefaultModel is the text-classification model the local pipeline is exported from.
const DefaultModel = "j-hartmann/emotion-english-distilroberta-base"

// DefaultModelLabels returns the label set of DefaultModel in output-index order.
func DefaultModelLabels() []Label {
	return []Label{Anger, Disgust, Fear, Joy, Neutral, Sadness, Surprise}
}

// ParseLabel lowercases and trims a raw label string.
func ParseLabel(raw string) Label {
	return Label(strings.ToLower(strings.TrimSpace(raw)))
}

// ParseLabels converts raw label names, dropping empties and duplicates.
func ParseLabels(raw []string) []Label {
	out := make([]Label, 0, len(raw))
	seen := make(map[Label]struct{}, len(raw))
	for _, r := range raw {
		label := ParseLabel(r)
		if label == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}

// Title renders a label for display, e.g. "joy" -> "Joy".
func (l Label) Title() string {
	s := string(l)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func (l Label) String() string {
	return string(l)
}
