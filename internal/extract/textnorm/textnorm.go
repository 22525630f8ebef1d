// Package textnorm holds the Turkish-aware string normalizations shared by
// the detector, the merger and the table deduplicator.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Lower applies Turkish casing rules (I -> ı, İ -> i) on NFC text.
// Casers are stateful, so one is built per call.
func Lower(s string) string {
	return cases.Lower(language.Turkish).String(norm.NFC.String(s))
}

// CollapseSpace trims s and replaces every whitespace run with one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Key is the identity used for de-duplicating list entries. It folds
// diacritics too, so "ISO" and "iso" (İ/ı casing) compare equal.
func Key(s string) string {
	return CollapseSpace(Fold(s))
}

// Comparable lower-cases s, strips punctuation and symbols and collapses
// whitespace. Letters (Turkish ones included) and digits survive.
func Comparable(s string) string {
	lowered := Lower(s)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return CollapseSpace(b.String())
}

var dotless = runes.Map(func(r rune) rune {
	if r == 'ı' {
		return 'i'
	}
	return r
})

// Fold lower-cases s and removes diacritics so "KAHVALTI", "Kahvaltı" and
// "kahvalti" all become "kahvalti".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), dotless, norm.NFC)
	out, _, err := transform.String(t, Lower(s))
	if err != nil {
		return Lower(s)
	}
	return out
}

// Words splits folded text into letter/digit tokens.
func Words(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
