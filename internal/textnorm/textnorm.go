// Package textnorm holds the text folding shared by heading detection and keyword matching.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s, strips diacritics (so "EĞİTİM" and "egitim" compare equal),
// maps the Turkish dotless i to i and collapses whitespace runs into single spaces.
func Fold(s string) string {
	lower := strings.ToLower(s)

	// transform chains keep state, so one is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, lower)
	if err != nil {
		folded = lower
	}

	folded = strings.ReplaceAll(folded, "ı", "i")
	return CollapseSpaces(folded)
}

// CollapseSpaces trims s and replaces every run of whitespace with a single space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ContainsWord reports whether word occurs in s delimited by non-letter runes or the string edges.
// Both arguments are expected to be folded already.
func ContainsWord(s, word string) bool {
	_, ok := IndexWord(s, word)
	return ok
}

// IndexWord returns the byte offset of the first whole-word occurrence of word in s.
func IndexWord(s, word string) (int, bool) {
	if word == "" {
		return 0, false
	}

	offset := 0
	for offset < len(s) {
		idx := strings.Index(s[offset:], word)
		if idx < 0 {
			return 0, false
		}
		start := offset + idx
		end := start + len(word)
		if boundaryBefore(s, start) && boundaryAfter(s, end) {
			return start, true
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		offset = start + size
	}
	return 0, false
}

func boundaryBefore(s string, pos int) bool {
	if pos <= 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:pos])
	return !isWordRune(r)
}

func boundaryAfter(s string, pos int) bool {
	if pos >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[pos:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
