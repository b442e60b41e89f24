// Package slug derives stable, URL-safe identifiers from human titles.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make returns the slug for input. The result contains only [a-z0-9-],
// never starts or ends with '-', and Make(Make(x)) == Make(x).
func Make(input string) string {
	if input == "" {
		return ""
	}

	folded := fold(input)

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range folded {
		if !isAlnum(r) {
			// Spaces, underscores, dashes and everything outside the
			// allowed set all collapse into a single separator.
			pendingDash = true
			continue
		}
		if pendingDash && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingDash = false
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// fold removes pictographs, decomposes accented and compatibility
// characters and drops the combining marks left behind. Other symbols
// survive and become separators.
func fold(input string) string {
	t := transform.Chain(
		runes.Remove(runes.Predicate(isPictograph)),
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
	)
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return out
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// isPictograph reports emoji and pictographic code points along with the
// joiners, variation selectors and tag characters that glue them together.
// ™ and friends are listed because NFKD would otherwise spell them out.
func isPictograph(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r >= 0x2B00 && r <= 0x2BFF:
		return true
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r >= 0xE0020 && r <= 0xE007F:
		return true
	}
	switch r {
	case 0x200D, 0x20E3, '©', '®', '™', '‼', '⁉':
		return true
	}
	return false
}
