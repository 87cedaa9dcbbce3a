// Package normalize folds free text into a canonical form for fuzzy matching.
//
// Folding is case- and diacritic-insensitive and independent of the process
// locale, so "Nội dung" and "noi dung" compare equal.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// punctuation lists the characters replaced by a single space.
const punctuation = `-,.!?'"`

// Text returns the folded form of s:
//  1. lower-cased with locale-independent rules
//  2. decomposed, stripped of combining marks and recomposed
//  3. punctuation replaced with spaces
//  4. whitespace runs collapsed to one space and trimmed
//
// Text never fails and Text(Text(s)) == Text(s).
func Text(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	s = cases.Lower(language.Und).String(s)

	// Chains carry internal buffers, so build one per call.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(foldRune),
		norm.NFC,
	)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	return strings.Join(strings.Fields(folded), " ")
}

// Contains reports whether the folded haystack contains the folded needle.
// An empty needle matches everything.
func Contains(haystack, needle string) bool {
	return strings.Contains(Text(haystack), Text(needle))
}

// foldRune maps letters without a canonical decomposition onto their base
// letter and turns punctuation into spaces.
func foldRune(r rune) rune {
	switch r {
	case 'đ', 'Đ':
		return 'd'
	}
	if strings.ContainsRune(punctuation, r) {
		return ' '
	}
	return r
}
