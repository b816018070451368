package assistant

import "strings"

var (
	positiveWords  = []string{"great", "good", "happy", "excited", "love", "awesome", "amazing", "wonderful"}
	negativeWords  = []string{"bad", "sad", "tired", "cant", "can't", "hard", "difficult", "struggling"}
	uncertainWords = []string{"maybe", "try", "might", "not sure", "confused", "help", "unsure"}
)

// AnalyzeSentiment classifies a message as positive, negative, uncertain or
// neutral. Single keywords match whole words only, so "country" does not
// register as "try"; multi-word phrases are matched as substrings.
func AnalyzeSentiment(message string) string {
	message = strings.ToLower(message)
	words := make(map[string]bool)
	for _, w := range strings.Fields(message) {
		words[w] = true
	}

	for _, w := range positiveWords {
		if words[w] {
			return "positive"
		}
	}
	for _, w := range negativeWords {
		if words[w] {
			return "negative"
		}
	}
	for _, w := range uncertainWords {
		if strings.Contains(w, " ") {
			if strings.Contains(message, w) {
				return "uncertain"
			}
		} else if words[w] {
			return "uncertain"
		}
	}
	return "neutral"
}
