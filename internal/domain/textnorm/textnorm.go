// Package textnorm cleans and normalizes raw document text before chunking.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Clean collapses all whitespace runs to single spaces and trims the ends.
// Every ingested document passes through Clean.
func Clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// StripAccents removes diacritics via NFKD decomposition, dropping combining
// marks. It is a separate opt-in step: Clean never implies accent stripping.
func StripAccents(text string) string {
	decomposed := norm.NFKD.String(text)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
