// Package search provides diacritic- and case-insensitive text matching for
// vocabulary lookups. Vietnamese glosses are stored with full tone marks
// ("con mèo"); users type them with or without marks ("con meo"), so both
// sides are folded to a plain lowercase form before comparison.
//
//   - No logging in the library (callers decide how/what to log)
//   - Functional options (Option pattern)
//   - Safe for concurrent use; a Matcher is immutable after construction
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s, strips combining marks and maps letters that do not
// decompose (đ, Đ) to their base form. Runs of whitespace collapse to one
// space and the result is trimmed.
//
//	Fold("  Con  Mèo ") == "con meo"
//	Fold("Đường")       == "duong"
func Fold(s string) string {
	if s == "" {
		return ""
	}
	// Transformers carry state; build the chain per call.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(mapStroke),
		cases.Fold(),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = strings.ToLower(s)
	}
	return normalizeWhitespace(out)
}

func mapStroke(r rune) rune {
	switch r {
	case 'đ':
		return 'd'
	case 'Đ':
		return 'D'
	}
	return r
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := true // drops leading space
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}
