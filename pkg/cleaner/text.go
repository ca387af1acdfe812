package cleaner

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Anything that is not an ASCII letter, digit or whitespace character
var punctuation = regexp.MustCompile(`[^a-zA-Z0-9\t\n\v\f\r \x1c-\x1f]`)

// NormalizeText folds s to plain ASCII words. The steps run in a fixed
// order: decompose and drop non-ASCII, expand "&" to "and", strip
// punctuation, trim. Nil and empty input return nil.
func NormalizeText(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}

	out := foldASCII(*s)
	out = strings.ReplaceAll(out, "&", "and")
	out = punctuation.ReplaceAllString(out, "")
	out = strings.TrimFunc(out, isSpace)
	return &out
}

// foldASCII applies compatibility decomposition and drops every rune that
// has no ASCII form
func foldASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.Map(func(r rune) rune {
			if r > unicode.MaxASCII {
				return -1
			}
			return r
		}, s)
	}
	return out
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// upper upper-cases a normalized value, keeping nil
func upper(s *string) *string {
	if s == nil {
		return nil
	}
	out := strings.ToUpper(*s)
	return &out
}

// underscored replaces spaces with underscores, keeping nil
func underscored(s *string) *string {
	if s == nil {
		return nil
	}
	out := strings.ReplaceAll(*s, " ", "_")
	return &out
}
