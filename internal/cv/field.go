package cv

// Field names a structured attribute of a candidate.
type Field string

const (
	FieldSkills         Field = "SKILLS"
	FieldExperience     Field = "EXPERIENCE"
	FieldEducation      Field = "EDUCATION"
	FieldLanguages      Field = "LANGUAGES"
	FieldCertifications Field = "CERTIFICATIONS"
	FieldCourses        Field = "COURSES"
	FieldPersonalSkills Field = "PERSONAL_SKILLS"
	FieldReferences     Field = "REFERENCES"
	FieldProjects       Field = "PROJECTS"
	FieldSummary        Field = "SUMMARY"
)

// Kind is the shape of a field value.
type Kind int

const (
	KindStringSet Kind = iota + 1
	KindRecordList
	KindLanguageList
	KindFreeText
)

func (k Kind) String() string {
	switch k {
	case KindStringSet:
		return "string_set"
	case KindRecordList:
		return "record_list"
	case KindLanguageList:
		return "language_list"
	case KindFreeText:
		return "free_text"
	default:
		return "unknown"
	}
}

type fieldSpec struct {
	kind    Kind
	section Section
}

// canonicalFields is ordered by scoring weight, highest first.
var canonicalFields = []Field{
	FieldExperience,
	FieldSkills,
	FieldEducation,
	FieldSummary,
	FieldProjects,
	FieldLanguages,
	FieldCertifications,
	FieldCourses,
	FieldPersonalSkills,
	FieldReferences,
}

var fieldSpecs = map[Field]fieldSpec{
	FieldSkills:         {kind: KindStringSet, section: SectionSkills},
	FieldPersonalSkills: {kind: KindStringSet, section: SectionPersonalSkills},
	FieldExperience:     {kind: KindRecordList, section: SectionExperience},
	FieldEducation:      {kind: KindRecordList, section: SectionEducation},
	FieldCertifications: {kind: KindRecordList, section: SectionCertifications},
	FieldCourses:        {kind: KindRecordList, section: SectionCourses},
	FieldProjects:       {kind: KindRecordList, section: SectionProjects},
	FieldReferences:     {kind: KindRecordList, section: SectionReferences},
	FieldLanguages:      {kind: KindLanguageList, section: SectionLanguages},
	FieldSummary:        {kind: KindFreeText, section: SectionSummary},
}

// AllFields returns every field in canonical order.
func AllFields() []Field {
	out := make([]Field, len(canonicalFields))
	copy(out, canonicalFields)
	return out
}

// Known reports whether f is one of the canonical fields.
func (f Field) Known() bool {
	_, ok := fieldSpecs[f]
	return ok
}

// Kind returns the value shape carried by f, or 0 for unknown fields.
func (f Field) Kind() Kind {
	return fieldSpecs[f].kind
}

// Section returns the section f is extracted from.
func (f Field) Section() Section {
	return fieldSpecs[f].section
}
