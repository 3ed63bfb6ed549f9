// Package textmatch holds the shared text primitives of the intake pipeline:
// case/diacritic folding and edit-distance matching. Every component that
// compares patient text against a lookup table goes through Fold so that the
// same phrase always resolves the same way.
package textmatch

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// diacritics maps the accented characters seen in German and English patient
// input onto their base form. ß expands to ss per German orthography.
var diacritics = strings.NewReplacer(
	"ä", "a", "ö", "o", "ü", "u", "ß", "ss",
	"á", "a", "à", "a", "â", "a",
	"é", "e", "è", "e", "ê", "e",
	"í", "i", "ì", "i", "î", "i",
	"ó", "o", "ò", "o", "ô", "o",
	"ú", "u", "ù", "u", "û", "u",
	"ç", "c", "ñ", "n",
)

// Fold lowercases s and strips diacritics.
func Fold(s string) string {
	return diacritics.Replace(strings.ToLower(s))
}

// FoldTrim folds s and trims surrounding whitespace.
func FoldTrim(s string) string {
	return strings.TrimSpace(Fold(s))
}

// WithinDistance reports whether word is within maxDist edits of any candidate.
func WithinDistance(word string, candidates []string, maxDist int) bool {
	for _, c := range candidates {
		if levenshtein.ComputeDistance(word, c) <= maxDist {
			return true
		}
	}
	return false
}

// TrimTrailingPunctuation removes trailing punctuation and whitespace, used
// before short-answer checks so "nein." and "nein" classify alike.
func TrimTrailingPunctuation(s string) string {
	return strings.TrimRight(s, " \t.,!?;:")
}
