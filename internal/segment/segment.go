// Package segment splits extracted résumé text into canonical sections.
package segment

import (
	"strings"

	"github.com/spigell/cv-compare/internal/cv"
	"github.com/spigell/cv-compare/internal/textnorm"
)

// aliases maps surface headings to canonical sections. Keys are written in any
// case; they are folded once when the lookup table is built.
var aliases = map[string]cv.Section{
	"experience":              cv.SectionExperience,
	"work experience":         cv.SectionExperience,
	"professional experience": cv.SectionExperience,
	"employment history":      cv.SectionExperience,
	"deneyim":                 cv.SectionExperience,
	"iş deneyimi":             cv.SectionExperience,
	"tecrübe":                 cv.SectionExperience,

	"education": cv.SectionEducation,
	"eğitim":    cv.SectionEducation,

	"skills":           cv.SectionSkills,
	"technical skills": cv.SectionSkills,
	"yetenekler":       cv.SectionSkills,
	"teknik beceriler": cv.SectionSkills,
	"teknik":           cv.SectionSkills,
	"beceriler":        cv.SectionSkills,

	"summary":   cv.SectionSummary,
	"profile":   cv.SectionSummary,
	"about me":  cv.SectionSummary,
	"objective": cv.SectionSummary,
	"özet":      cv.SectionSummary,
	"hakkımda":  cv.SectionSummary,

	"languages":      cv.SectionLanguages,
	"yabancı dil":    cv.SectionLanguages,
	"yabancı diller": cv.SectionLanguages,
	"dil":            cv.SectionLanguages,
	"diller":         cv.SectionLanguages,

	"certifications": cv.SectionCertifications,
	"certificates":   cv.SectionCertifications,
	"sertifikalar":   cv.SectionCertifications,

	"courses": cv.SectionCourses,
	"kurslar": cv.SectionCourses,
	"kurs":    cv.SectionCourses,

	"personal skills":   cv.SectionPersonalSkills,
	"soft skills":       cv.SectionPersonalSkills,
	"kişisel beceriler": cv.SectionPersonalSkills,

	"references":  cv.SectionReferences,
	"referanslar": cv.SectionReferences,
	"referans":    cv.SectionReferences,

	"projects": cv.SectionProjects,
	"projeler": cv.SectionProjects,

	"contact":  cv.SectionContact,
	"iletişim": cv.SectionContact,
}

var headings = buildHeadings(aliases)

func buildHeadings(in map[string]cv.Section) map[string]cv.Section {
	out := make(map[string]cv.Section, len(in))
	for alias, section := range in {
		out[textnorm.Fold(alias)] = section
	}
	return out
}

// Heading reports the canonical section for a line when the whole line is a
// known heading. Case, diacritics, surrounding whitespace and one trailing
// colon are ignored.
func Heading(line string) (cv.Section, bool) {
	folded := textnorm.Fold(line)
	folded = strings.TrimSpace(strings.TrimSuffix(folded, ":"))
	if folded == "" {
		return "", false
	}
	section, ok := headings[folded]
	return section, ok
}

// Segment splits text into sections. Text before the first heading lands in
// GENERAL; a repeated heading appends to the existing body. Text without any
// heading yields a map holding only GENERAL, and blank text yields an empty map.
func Segment(text string) cv.SectionMap {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	bodies := make(map[cv.Section][]string)
	order := make([]cv.Section, 0)
	current := cv.SectionGeneral
	var buf []string

	flush := func() {
		body := strings.TrimSpace(strings.Join(buf, "\n"))
		buf = buf[:0]
		if body == "" {
			return
		}
		if _, ok := bodies[current]; !ok {
			order = append(order, current)
		}
		bodies[current] = append(bodies[current], body)
	}

	for _, line := range strings.Split(text, "\n") {
		if section, ok := Heading(line); ok {
			flush()
			current = section
			continue
		}
		buf = append(buf, line)
	}
	flush()

	out := make(cv.SectionMap, len(order))
	for _, section := range order {
		out[section] = strings.Join(bodies[section], " ")
	}
	return out
}
