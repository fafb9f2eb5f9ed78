// Package response maps predicted emotion labels to canned supportive replies.
package response

import (
	"github.com/zhouzirui/neuroaid/backend/internal/analysis/emotion"
)

// Fallback is returned for every label outside the curated table.
const Fallback = "I'm here to support you."

// Select returns the reply for a raw label string. Lookup ignores case and
// surrounding whitespace and never fails.
func Select(label string) string {
	return For(emotion.ParseLabel(label))
}

// For returns the reply for an already parsed label.
func For(label emotion.Label) string {
	switch label {
	case emotion.Joy:
		return "I'm really happy to hear that! 😊 Want to talk more about what's making you feel this way?"
	case emotion.Sadness:
		return "I'm sorry you're feeling this way. It's okay to feel sad. Do you want to talk about it?"
	case emotion.Anger:
		return "It seems like something upset you. I’m here to listen if you want to vent."
	case emotion.Fear:
		return "That sounds scary. You’re not alone—would you like to share more?"
	case emotion.Love:
		return "That's beautiful. Love is powerful. How are you feeling right now?"
	case emotion.Surprise:
		return "Wow! That’s unexpected. Want to tell me more?"
	case emotion.Neutral:
		return "Thanks for sharing. I'm here if you want to talk more."
	case emotion.Others:
		return "I'm here to support you no matter what you're feeling."
	case emotion.Happy:
		return "It's wonderful to hear that you're feeling happy. Keep embracing the positive moments!"
	case emotion.Sad:
		return "I'm sorry you're feeling down. It's okay to feel sad—try to be gentle with yourself."
	case emotion.Angry:
		return "Anger is a valid emotion. Take a deep breath—processing your feelings calmly is powerful."
	case emotion.Disgust:
		return "That sounds uncomfortable. Consider distancing yourself from what’s triggering that feeling."
	case emotion.Calm:
		return "You seem to be feeling calm. That's a wonderful state—try to hold onto it."
	default:
		return Fallback
	}
}

// Curated lists the labels that have a dedicated reply, in table order.
func Curated() []emotion.Label {
	return []emotion.Label{
		emotion.Joy, emotion.Sadness, emotion.Anger, emotion.Fear, emotion.Love,
		emotion.Surprise, emotion.Neutral, emotion.Others, emotion.Happy, emotion.Sad,
		emotion.Angry, emotion.Disgust, emotion.Calm,
	}
}

// Known reports whether label has a dedicated reply.
func Known(label string) bool {
	return For(emotion.ParseLabel(label)) != Fallback
}

// Entry pairs a label with its reply.
type Entry struct {
	Label    emotion.Label `json:"label"`
	Response string        `json:"response"`
}

// Table returns the curated replies. The fallback is not part of it.
func Table() []Entry {
	labels := Curated()
	out := make([]Entry, len(labels))
	for i, label := range labels {
		out[i] = Entry{Label: label, Response: For(label)}
	}
	return out
}
