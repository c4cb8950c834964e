// Package keyword implements the shared step-to-keyword resolution engine:
// normalization of step and keyword text into comparable keys, compilation
// of keyword names with ${variable} placeholders into matchers, and the
// resolver that ranks keyword definitions against steps and steps against
// keyword definitions.
package keyword

import (
	"regexp"
	"strings"
)

// varToken is the marker every variable-shaped slot collapses to during
// normalization. A keyword declaring ${username} and a step supplying
// "alice" in the same position normalize to the same key.
const varToken = "var"

var (
	gherkinPrefixRe = regexp.MustCompile(`^(given|when|then|and|but)\s+`)
	placeholderRe   = regexp.MustCompile(`\$\{\w+\}`)
	quotedRe        = regexp.MustCompile(`"[^"]*"|'[^']*'`)
	nonWordRe       = regexp.MustCompile(`[^\w\s]`)
	spaceRunRe      = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes step or keyword text into a comparison key.
// It lowercases, strips leading Gherkin keywords, collapses ${placeholder}
// and quoted spans to a shared marker, and squashes punctuation and
// whitespace. Normalize is total (any input yields a deterministic key)
// and idempotent.
func Normalize(text string) string {
	s := strings.ToLower(text)
	// Strip leading Gherkin keywords until none remain, so the output is
	// a fixpoint even for steps like "And then ...".
	for {
		stripped := gherkinPrefixRe.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}
	s = placeholderRe.ReplaceAllString(s, varToken)
	s = quotedRe.ReplaceAllString(s, varToken)
	s = nonWordRe.ReplaceAllString(s, " ")
	s = spaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
