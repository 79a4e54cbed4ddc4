package parser

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// invisible covers zero-width joiners, bidi marks and isolates, the BOM and
// stray control characters. Whitespace controls survive so lines still split.
var invisible = runes.Predicate(func(r rune) bool {
	if unicode.Is(unicode.Cf, r) {
		return true
	}
	return unicode.IsControl(r) && !unicode.IsSpace(r)
})

// stripInvisible removes invisible runes and composes to NFC.
func stripInvisible(text string) string {
	t := transform.Chain(runes.Remove(invisible), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// entityPattern only matches terminated references. html.UnescapeString on
// its own also expands bare legacy names, which turns "&reserved=" into "®served=".
var entityPattern = regexp.MustCompile(`&(?:#[0-9]{1,7}|#[xX][0-9a-fA-F]{1,6}|[A-Za-z][A-Za-z0-9]{1,31});`)

func unescapeEntities(text string) string {
	return entityPattern.ReplaceAllStringFunc(text, html.UnescapeString)
}

// Sanitize prepares free text for prefix scanning: entities are unescaped
// (twice, for &amp;amp; style double escaping), invisible runes dropped and
// whitespace runs collapsed to one space.
func Sanitize(text string) string {
	text = unescapeEntities(unescapeEntities(text))
	text = stripInvisible(text)
	return strings.Join(strings.Fields(text), " ")
}
