package analyze

import (
	"regexp"
	"strings"
)

var sentenceSplitRe = regexp.MustCompile(`[.!?]+\s*`)

// splitSentences normalizes whitespace and splits text on terminal
// punctuation. Empty fragments are dropped.
func splitSentences(text string) []string {
	text = spaceRun.ReplaceAllString(strings.TrimSpace(text), " ")
	parts := sentenceSplitRe.Split(text, -1)

	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// tokenize lowercases and extracts word tokens.
var wordRe = regexp.MustCompile(`[a-zA-Z0-9']+`)

func tokenize(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}
