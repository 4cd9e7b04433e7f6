// Package answer post-processes generated text: prompt-echo stripping,
// sentence deduplication, and the layered phone-number extraction fallback.
package answer

import (
	"regexp"
	"strings"
)

const (
	// Residual text longer than this is assumed to still contain echoed
	// prompt material.
	echoLengthCeiling = 500
	truncateLength    = 200
)

var (
	// Greedy prefix match, so everything up to the last marker goes.
	echoMarkerRe   = regexp.MustCompile(`(?is)^.*(?:answer|response):\s*`)
	promptEchoRe   = regexp.MustCompile(`(?is)you are nurseaid.*?answer:\s*`)
	contextBlockRe = regexp.MustCompile(`(?is)context:.*?question:`)
	excerptBlockRe = regexp.MustCompile(`(?s)--- DOCUMENT EXCERPT ---.*?-{10,}`)
	markerSplitRe  = regexp.MustCompile(`(?i)(?:answer|response):\s*`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// CleanModelOutput strips echoed prompt and context from generated text.
// Small models tend to repeat the entire prompt before answering; whatever
// survives the marker and block strips is collapsed to single-spaced text.
func CleanModelOutput(text string) string {
	text = echoMarkerRe.ReplaceAllString(text, "")
	text = promptEchoRe.ReplaceAllString(text, "")
	text = contextBlockRe.ReplaceAllString(text, "")
	text = excerptBlockRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if len(text) > echoLengthCeiling {
		parts := markerSplitRe.Split(text, -1)
		if len(parts) > 1 {
			text = parts[len(parts)-1]
		} else {
			// Truncate on runes so a multibyte character is never split.
			runes := []rune(text)
			if len(runes) > truncateLength {
				runes = runes[:truncateLength]
			}
			text = string(runes) + "..."
		}
	}
	return strings.TrimSpace(text)
}

// DedupeSentences keeps the first occurrence of each sentence, compared in
// lower-cased trimmed form, and rejoins with single spaces. Applying it twice
// is a no-op.
func DedupeSentences(text string) string {
	seen := make(map[string]bool)
	var out []string
	for _, sentence := range splitSentences(text) {
		key := strings.ToLower(strings.TrimSpace(sentence))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(sentence))
	}
	return strings.Join(out, " ")
}

// splitSentences breaks text after terminal punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		if i+1 < len(runes) && !isSpace(runes[i+1]) {
			continue
		}
		sentences = append(sentences, string(runes[start:i+1]))
		// Skip the whitespace run before the next sentence.
		j := i + 1
		for j < len(runes) && isSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
