package rolloption

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug converts s into a lowercase, hyphen-separated tag fragment.
// Diacritics are folded ("Épée" becomes "epee"), camelCase boundaries and runs
// of non-alphanumeric characters become a single hyphen.
//
// Postcondition: the result contains only lowercase letters, digits, and
// single interior hyphens.
func Slug(s string) string {
	// transform.Chain is stateful, so each call builds its own chain.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pending := false
	var prev rune
	for _, r := range folded {
		alnum := unicode.IsLetter(r) || unicode.IsDigit(r)
		if !alnum {
			pending = true
			prev = r
			continue
		}
		if unicode.IsUpper(r) && unicode.IsLower(prev) {
			pending = true
		}
		if pending && b.Len() > 0 {
			b.WriteByte('-')
		}
		pending = false
		b.WriteRune(unicode.ToLower(r))
		prev = r
	}
	return b.String()
}
