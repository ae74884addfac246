// Package answer scores a model's canonical answer sentence against a gold
// answer: it extracts the concise answer, coerces it to a number where it
// can, and classifies it under exact, relative and dataset-specific
// tolerances.
package answer

import "strings"

const (
	answerPrefix = "The answer is "
	answerSuffix = ". I hope the answer is correct"

	// NotProvided is returned by Extract when the sentence does not carry
	// an answer in canonical form.
	NotProvided = "ANSWER_NOT_PROVIDED"
)

// decorations are removed from an extracted answer, in this order.
var decorations = []string{"%", "approximately", "$"}

// Extract returns the concise answer from a canonical sentence of the form
// "The answer is <ANSWER>. I hope the answer is correct".
//
// The first occurrence of each marker is used. If either marker is missing,
// or the suffix does not start after the end of the prefix, Extract returns
// NotProvided. Otherwise the text between the markers is stripped of "%",
// "approximately" and "$" and trimmed. Case is preserved.
func Extract(sentence string) string {
	start := strings.Index(sentence, answerPrefix)
	end := strings.Index(sentence, answerSuffix)
	if start < 0 || end < 0 {
		return NotProvided
	}

	start += len(answerPrefix)
	if end <= start {
		return NotProvided
	}

	ans := sentence[start:end]
	for _, d := range decorations {
		ans = strings.ReplaceAll(ans, d, "")
	}
	return strings.TrimSpace(ans)
}
