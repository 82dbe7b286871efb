// Package normalize folds free text, numbers and phone numbers coming from spreadsheets and LLM output.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// Fold lowercases, strips accents and collapses punctuation to single spaces.
// "Référence  Interne" -> "reference interne"
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// Tokens folded words of at least minLen runes
func Tokens(s string, minLen int) []string {
	var out []string
	for _, f := range strings.Fields(Fold(s)) {
		if len([]rune(f)) >= minLen {
			out = append(out, f)
		}
	}
	return out
}

// Contains reports whether needle appears in haystack after folding both
func Contains(haystack, needle string) bool {
	n := Fold(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Fold(haystack), n)
}

// JSONObject extracts the outermost {...} block from model output
func JSONObject(s string) string {
	return jsonObjectRe.FindString(s)
}
