// Package cv holds the structured résumé model: sections, typed field values,
// candidate profiles and score reports.
package cv

import "sort"

// Section is a canonical heading key.
type Section string

const (
	SectionGeneral        Section = "GENERAL"
	SectionContact        Section = "CONTACT"
	SectionSummary        Section = "SUMMARY"
	SectionExperience     Section = "EXPERIENCE"
	SectionEducation      Section = "EDUCATION"
	SectionSkills         Section = "SKILLS"
	SectionPersonalSkills Section = "PERSONAL_SKILLS"
	SectionLanguages      Section = "LANGUAGES"
	SectionCertifications Section = "CERTIFICATIONS"
	SectionCourses        Section = "COURSES"
	SectionProjects       Section = "PROJECTS"
	SectionReferences     Section = "REFERENCES"
)

// SectionMap maps a canonical heading to its trimmed, non-empty body.
type SectionMap map[Section]string

// Get returns the body of the section and whether it is present.
func (m SectionMap) Get(s Section) (string, bool) {
	body, ok := m[s]
	if !ok || body == "" {
		return "", false
	}
	return body, true
}

// Sections returns the present headings in lexical order.
func (m SectionMap) Sections() []Section {
	out := make([]Section, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
