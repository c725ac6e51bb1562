// Package report renders a comparison as ordered narrative lines.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/cv-compare/internal/cv"
)

const (
	HighThreshold     = 0.75
	ModerateThreshold = 0.5

	// maxNamedItems is how many unique items a line names before summarizing the rest.
	maxNamedItems = 2
)

// Tier returns the qualitative verdict for a composite score.
func Tier(score float64) string {
	switch {
	case score > HighThreshold:
		return "highly compatible"
	case score > ModerateThreshold:
		return "moderately compatible"
	default:
		return "low compatibility"
	}
}

// Generate returns the report lines: a header, the tier verdict, one line per
// scored field, shared skills, then the skills and languages unique to each
// candidate. Missing data omits the matching lines.
func Generate(a, b cv.Profile, r cv.ScoreReport) []string {
	labelA, labelB := Label("A", a), Label("B", b)

	lines := []string{
		fmt.Sprintf("Comparison of %s and %s", labelA, labelB),
		verdict(r.Composite),
	}

	for _, f := range r.ScoredFields() {
		score, _ := r.Score(f)
		lines = append(lines, fmt.Sprintf("%s similarity: %d%%", FieldTitle(f), int(math.Round(score*100))))
	}

	skillsA, skillsB := a.StringSet(cv.FieldSkills), b.StringSet(cv.FieldSkills)
	if !skillsA.IsEmpty() && !skillsB.IsEmpty() {
		common := skillsA.Intersection(skillsB)
		if len(common) == 0 {
			lines = append(lines, "No common skills.")
		} else {
			lines = append(lines, fmt.Sprintf("Common skills (%d): %s", len(common), strings.Join(common, ", ")))
		}
	}

	if line, ok := uniqueLine(labelA, "has unique skills", skillsA.Difference(skillsB)); ok {
		lines = append(lines, line)
	}
	if line, ok := uniqueLine(labelB, "has unique skills", skillsB.Difference(skillsA)); ok {
		lines = append(lines, line)
	}

	langA, langB := a.Languages().Names(), b.Languages().Names()
	if !langA.IsEmpty() && !langB.IsEmpty() {
		if line, ok := uniqueLine(labelA, "also speaks", langA.Difference(langB)); ok {
			lines = append(lines, line)
		}
		if line, ok := uniqueLine(labelB, "also speaks", langB.Difference(langA)); ok {
			lines = append(lines, line)
		}
	}

	return lines
}

func verdict(score float64) string {
	tier := Tier(score)
	if tier == "low compatibility" {
		return fmt.Sprintf("Overall score %.3f: the candidates show low compatibility.", score)
	}
	return fmt.Sprintf("Overall score %.3f: the candidates are %s.", score, tier)
}

// uniqueLine names up to two items and counts the rest.
func uniqueLine(label, verb string, items []string) (string, bool) {
	if len(items) == 0 {
		return "", false
	}

	named := items
	if len(named) > maxNamedItems {
		named = named[:maxNamedItems]
	}

	line := fmt.Sprintf("%s %s: %s", label, verb, strings.Join(named, ", "))
	if rest := len(items) - len(named); rest > 0 {
		line += fmt.Sprintf(" and %d more", rest)
	}
	return line + ".", true
}

// Label names a candidate, adding the contact name when it is known.
func Label(id string, p cv.Profile) string {
	if name := p.Contact().Name; name != "" {
		return fmt.Sprintf("Candidate %s (%s)", id, name)
	}
	return "Candidate " + id
}

// FieldTitle turns PERSONAL_SKILLS into "Personal skills".
func FieldTitle(f cv.Field) string {
	s := strings.ToLower(strings.ReplaceAll(string(f), "_", " "))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
