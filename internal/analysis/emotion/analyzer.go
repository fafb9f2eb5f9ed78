package emotion

import "strings"

// Decision is the outcome of the keyword heuristic for a single utterance.
type Decision struct {
	Emotion Label
	Score   int
}

var keywordBuckets = map[Label][]string{
	Joy: {
		"happy", "glad", "excited", "great", "awesome", "amazing", "wonderful", "fantastic",
		"delighted", "thrilled", "yay", "lol", "haha", "proud", "grateful", "thank you", "thanks",
		"got the job", "celebrate", "love it", "can't wait",
	},
	Sadness: {
		"sad", "unhappy", "depressed", "lonely", "alone", "cry", "crying", "tears", "miss",
		"lost", "hopeless", "heartbroken", "grief", "down", "hurt", "sorrow", "empty", "tired of",
	},
	Anger: {
		"angry", "furious", "rage", "mad", "annoyed", "pissed", "hate", "outraged", "irritated",
		"fed up", "sick of", "unfair", "frustrated",
	},
	Fear: {
		"afraid", "scared", "fear", "terrified", "anxious", "anxiety", "nervous", "worried",
		"panic", "frightened", "dread", "what if",
	},
	Surprise: {
		"wow", "surprised", "unexpected", "shocked", "suddenly", "can't believe", "no way",
		"unbelievable", "out of nowhere",
	},
	Disgust: {
		"disgusting", "gross", "disgusted", "nasty", "revolting", "sickening", "ew", "yuck",
	},
	Love: {
		"love you", "adore", "in love", "my partner", "sweetheart", "cherish", "affection",
	},
	Calm: {
		"calm", "relaxed", "peaceful", "at ease", "serene", "content", "breathe",
	},
}

// neutralBaseline keeps plain statements from being pulled towards a stray keyword.
const neutralBaseline = 1

// Analyze picks the single strongest label for text using keyword buckets.
func Analyze(text string) Decision {
	scores := scoreText(text)

	best := Neutral
	bestScore := 0
	for _, label := range bucketOrder {
		if s := scores[label]; s > bestScore {
			best = label
			bestScore = s
		}
	}
	return Decision{Emotion: best, Score: bestScore}
}

// Distribution converts keyword hits into a probability distribution over labels.
// Labels the heuristic knows nothing about only ever receive zero weight.
func Distribution(text string, labels []Label) []Score {
	scores := scoreText(text)

	weights := make(map[Label]float64, len(labels))
	for _, label := range labels {
		weights[label] = float64(scores[label])
	}
	weights[Neutral] += neutralBaseline
	return Normalize(weights, labels)
}

var bucketOrder = []Label{Joy, Sadness, Anger, Fear, Surprise, Disgust, Love, Calm}

func scoreText(text string) map[Label]int {
	scores := make(map[Label]int)
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return scores
	}

	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if containsWord(normalized, word) {
				scores[label] += 3
			}
		}
	}

	exclamations := strings.Count(text, "!")
	if exclamations > 0 {
		scores[Surprise] += exclamations
		if exclamations == 1 && scores[Joy] > 0 {
			scores[Joy] += 2
		}
	}
	return scores
}

// containsWord reports whether phrase occurs in text on word boundaries, so that
// "mad" does not fire inside "made".
func containsWord(text, phrase string) bool {
	for start := 0; start < len(text); {
		idx := strings.Index(text[start:], phrase)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(phrase)
		if (idx == 0 || !isWordByte(text[idx-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		start = idx + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '\'' || b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
