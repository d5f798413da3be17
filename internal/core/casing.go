package core

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Enum values live in two vocabularies: a lowercase-hyphenated storage form
// ("credit-card") and a capitalized display form ("Credit Card"). The two
// transforms below are not true inverses: an input that already contains a
// hyphen ("Other-Income") collapses to the same token as its spaced variant,
// so the round trip only holds for single-space-separated words without
// internal hyphens.

// ToStorageForm lowercases s and replaces each run of whitespace with a
// single hyphen. Empty input is returned unchanged.
func ToStorageForm(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// ToDisplayForm splits s on hyphens, capitalizes the first character of
// each segment and joins the segments with spaces. Empty input is returned
// unchanged.
func ToDisplayForm(s string) string {
	if s == "" {
		return s
	}
	parts := strings.Split(s, "-")
	for i, p := range parts {
		parts[i] = capitalizeFirst(p)
	}
	return strings.Join(parts, " ")
}

// ToProperCase lowercases the whole string and capitalizes the first
// character of each space-separated word. Empty input is returned unchanged.
func ToProperCase(s string) string {
	if s == "" {
		return s
	}
	words := strings.Split(strings.ToLower(s), " ")
	for i, w := range words {
		words[i] = capitalizeFirst(w)
	}
	return strings.Join(words, " ")
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
