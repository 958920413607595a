// Package postprocess cleans raw model output into complete, unique
// sentences and tailors the wording to the requested audience.
package postprocess

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Process normalizes raw generated text and personalizes it for audience.
func Process(raw, audience string) string {
	return Personalize(Normalize(raw), audience)
}

// Normalize splits text into sentences, drops any sentence that does not end
// in terminal punctuation, removes repeated sentences (first occurrence
// wins) and joins the rest with a single space.
//
// Sentences are compared byte for byte. The result is empty when no complete
// sentence survives.
func Normalize(text string) string {
	sentences := splitSentences(strings.TrimSpace(text))

	seen := make(map[string]struct{}, len(sentences))
	kept := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if !endsWithTerminal(s) {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		kept = append(kept, s)
	}

	return strings.Join(kept, " ")
}

// splitSentences cuts text after every '.', '!' or '?' that is followed by
// whitespace. The whitespace run is consumed; the trailing fragment is
// returned as-is, even when empty.
func splitSentences(text string) []string {
	var out []string
	start := 0

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if !isTerminal(r) {
			continue
		}

		end := i
		for end < len(text) {
			ws, n := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsSpace(ws) {
				break
			}
			end += n
		}
		if end == i {
			continue
		}

		out = append(out, text[start:i])
		start = end
		i = end
	}

	return append(out, text[start:])
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func endsWithTerminal(s string) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return isTerminal(r)
}
