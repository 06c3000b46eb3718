package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// replacements maps common typographic runes to ASCII look-alikes.
var replacements = map[rune]string{
	'\u00a0': " ",
	'\u2002': " ",
	'\u2009': " ",
	'\u202f': " ",
	'\u2010': "-",
	'\u2011': "-",
	'\u2013': "-",
	'\u2014': "--",
	'\u2018': "'",
	'\u2019': "'",
	'\u201a': ",",
	'\u201c': "\"",
	'\u201d': "\"",
	'\u201e': "\"",
	'\u2022': "*",
	'\u2026': "...",
	'\u00ab': "<<",
	'\u00bb': ">>",
	'\u00b7': ".",
	'\u00d7': "x",
	'\u00df': "ss",
	'\u00e6': "ae",
	'\u00c6': "AE",
	'\u0153': "oe",
	'\u0152': "OE",
	'\u00f8': "o",
	'\u00d8': "O",
	'\u20ac': "EUR",
	'\u00a9': "(c)",
	'\u00ae': "(R)",
	'\u00ba': "o",
	'\u00aa': "a",
	'\u00b0': "o",
}

// Fold reduces s to the printable ASCII the bitmap face can draw: accents
// are stripped (ç → c, ã → a), typographic punctuation is replaced, and
// anything else becomes '?'.
func Fold(s string) string {
	if isPrintableASCII(s) {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r >= 0x20 && r < 0x7f:
			b.WriteRune(r)
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		default:
			if rep, ok := replacements[r]; ok {
				b.WriteString(rep)
			} else {
				b.WriteByte('?')
			}
		}
	}
	return b.String()
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 0x20 && c != '\n' && c != '\t') || c >= 0x7f {
			return false
		}
	}
	return true
}
