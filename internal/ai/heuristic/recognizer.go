// Package heuristic provides an offline, rule-based entity recognizer.
package heuristic

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/spigell/cv-compare/internal/ai"
)

const (
	month     = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?|ocak|şubat|mart|nisan|mayıs|haziran|temmuz|ağustos|eylül|ekim|kasım|aralık)`
	year      = `(?:19|20)\d{2}`
	datePoint = `(?:` + month + `\.?\s+` + year + `|\d{1,2}[./]` + year + `|` + year + `)`
	ongoing   = `(?:present|current|now|today|halen|günümüz|devam ediyor)`
)

var (
	dateRe = regexp.MustCompile(`(?i)` + datePoint + `(?:\s*[-–—]\s*(?:` + datePoint + `|` + ongoing + `))?`)

	orgSuffixes = []string{
		"inc", "inc.", "ltd", "ltd.", "llc", "gmbh", "corp", "corp.", "corporation", "company",
		"co.", "a.ş.", "a.ş", "aş", "ltd. şti.", "şti.", "holding", "group", "bank", "bankası",
		"university", "üniversitesi", "college", "institute", "academy", "akademi", "school",
		"lisesi", "teknoloji", "technologies", "software", "yazılım", "labs",
	}

	wordRe = regexp.MustCompile(`[\p{L}\p{N}&.'-]+`)
)

// Recognizer extracts dates by pattern and organizations by suffix keywords.
type Recognizer struct{}

func New() *Recognizer { return &Recognizer{} }

// Recognize returns DATE and ORGANIZATION entities ordered by position.
func (r *Recognizer) Recognize(_ context.Context, text string) ([]ai.Entity, error) {
	type located struct {
		pos    int
		entity ai.Entity
	}

	found := make([]located, 0)
	for _, loc := range dateRe.FindAllStringIndex(text, -1) {
		if digitAt(text, loc[0]-1) || digitAt(text, loc[1]) {
			continue
		}
		found = append(found, located{pos: loc[0], entity: ai.Entity{Text: strings.TrimSpace(text[loc[0]:loc[1]]), Type: ai.EntityDate}})
	}

	offset := 0
	for _, line := range strings.Split(text, "\n") {
		for _, org := range organizations(line) {
			idx := strings.Index(line, org)
			found = append(found, located{pos: offset + idx, entity: ai.Entity{Text: org, Type: ai.EntityOrganization}})
		}
		offset += len(line) + 1
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	out := make([]ai.Entity, 0, len(found))
	for _, f := range found {
		out = append(out, f.entity)
	}
	return out, nil
}

// organizations splits a line on separators and keeps the fragments that end
// with, or contain, an organization keyword.
func organizations(line string) []string {
	out := make([]string, 0)
	for _, fragment := range splitFragments(line) {
		words := wordRe.FindAllString(fragment, -1)
		for i, w := range words {
			if !isOrgSuffix(w) {
				continue
			}
			start := leadingCapitalized(words[:i])
			if start == i {
				continue
			}
			org := strings.Join(words[start:i+1], " ")
			if strings.Contains(fragment, org) {
				out = append(out, org)
			}
			break
		}
	}
	return out
}

func splitFragments(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		switch r {
		case '|', ',', ';', '(', ')', '@', '–', '—', '•', '\t':
			return true
		}
		return false
	})
}

func isOrgSuffix(word string) bool {
	w := strings.ToLower(word)
	for _, s := range orgSuffixes {
		if w == s {
			return true
		}
	}
	return false
}

// leadingCapitalized walks back from the end of words while they start with an
// upper-case letter and returns the index of the first one kept.
func leadingCapitalized(words []string) int {
	start := len(words)
	for i := len(words) - 1; i >= 0; i-- {
		w := words[i]
		if w == "&" || w == "-" || startsUpper(w) {
			start = i
			continue
		}
		break
	}
	return start
}

func startsUpper(w string) bool {
	for _, r := range w {
		return strings.ToUpper(string(r)) == string(r) && strings.ToLower(string(r)) != string(r)
	}
	return false
}

func digitAt(s string, i int) bool {
	return i >= 0 && i < len(s) && s[i] >= '0' && s[i] <= '9'
}
