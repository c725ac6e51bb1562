package cv

import (
	"sort"
	"strings"
)

// Value is the tagged union of field values. The variant is selected by the
// field's Kind; the unexported marker keeps the set closed.
type Value interface {
	Kind() Kind
	IsEmpty() bool
	// Canonical is the deterministic string form handed to semantic providers.
	Canonical() string
	isValue()
}

// NormalizeToken lower-cases, trims and collapses inner whitespace.
func NormalizeToken(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// StringSet is a set of normalized strings. The zero value is an empty set.
type StringSet struct {
	items map[string]struct{}
}

// NewStringSet normalizes items and collapses duplicates. Blank items are dropped.
func NewStringSet(items ...string) StringSet {
	set := StringSet{items: make(map[string]struct{}, len(items))}
	for _, item := range items {
		normalized := NormalizeToken(item)
		if normalized == "" {
			continue
		}
		set.items[normalized] = struct{}{}
	}
	return set
}

func (StringSet) Kind() Kind { return KindStringSet }

func (s StringSet) IsEmpty() bool { return len(s.items) == 0 }

func (s StringSet) Len() int { return len(s.items) }

// Contains reports whether the normalized form of item is in the set.
func (s StringSet) Contains(item string) bool {
	_, ok := s.items[NormalizeToken(item)]
	return ok
}

// Items returns the members in lexical order.
func (s StringSet) Items() []string {
	out := make([]string, 0, len(s.items))
	for item := range s.items {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// Intersection returns the members shared with other, sorted.
func (s StringSet) Intersection(other StringSet) []string {
	out := make([]string, 0)
	for item := range s.items {
		if _, ok := other.items[item]; ok {
			out = append(out, item)
		}
	}
	sort.Strings(out)
	return out
}

// Difference returns the members missing from other, sorted.
func (s StringSet) Difference(other StringSet) []string {
	out := make([]string, 0)
	for item := range s.items {
		if _, ok := other.items[item]; !ok {
			out = append(out, item)
		}
	}
	sort.Strings(out)
	return out
}

// UnionLen returns |s ∪ other|.
func (s StringSet) UnionLen(other StringSet) int {
	n := len(s.items)
	for item := range other.items {
		if _, ok := s.items[item]; !ok {
			n++
		}
	}
	return n
}

func (s StringSet) Canonical() string { return strings.Join(s.Items(), ", ") }

func (StringSet) isValue() {}

// Attribute names an optional sub-attribute of a Record.
type Attribute string

const (
	AttrRaw         Attribute = "raw"
	AttrInstitution Attribute = "institution"
	AttrDate        Attribute = "date"
	AttrDescription Attribute = "description"
	AttrName        Attribute = "name"
	AttrEmail       Attribute = "email"
	AttrPhone       Attribute = "phone"
)

var attributeOrder = []Attribute{AttrName, AttrRaw, AttrInstitution, AttrDate, AttrDescription, AttrEmail, AttrPhone}

// Record is one entry of a record list. A missing attribute is absent, which
// is distinct from an attribute holding an empty string: empty values are never stored.
type Record struct {
	attrs map[Attribute]string
}

// NewRecord builds a record, dropping attributes whose trimmed value is empty.
func NewRecord(attrs map[Attribute]string) Record {
	r := Record{attrs: make(map[Attribute]string, len(attrs))}
	for k, v := range attrs {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		r.attrs[k] = v
	}
	return r
}

// Get returns the attribute value and whether it is present.
func (r Record) Get(a Attribute) (string, bool) {
	v, ok := r.attrs[a]
	return v, ok
}

func (r Record) IsEmpty() bool { return len(r.attrs) == 0 }

// Attributes returns a copy of the present attributes.
func (r Record) Attributes() map[Attribute]string {
	out := make(map[Attribute]string, len(r.attrs))
	for k, v := range r.attrs {
		out[k] = v
	}
	return out
}

// Canonical joins attribute values in a fixed order; unknown attributes follow sorted by name.
func (r Record) Canonical() string {
	parts := make([]string, 0, len(r.attrs))
	seen := make(map[Attribute]bool, len(attributeOrder))
	for _, a := range attributeOrder {
		seen[a] = true
		if v, ok := r.attrs[a]; ok {
			parts = append(parts, v)
		}
	}

	extra := make([]string, 0)
	for a := range r.attrs {
		if !seen[a] {
			extra = append(extra, string(a))
		}
	}
	sort.Strings(extra)
	for _, a := range extra {
		parts = append(parts, r.attrs[Attribute(a)])
	}

	return strings.Join(parts, " | ")
}

// RecordList is an ordered sequence of records.
type RecordList struct {
	records []Record
}

// NewRecordList keeps the non-empty records in order.
func NewRecordList(records ...Record) RecordList {
	out := RecordList{records: make([]Record, 0, len(records))}
	for _, r := range records {
		if r.IsEmpty() {
			continue
		}
		out.records = append(out.records, r)
	}
	return out
}

func (RecordList) Kind() Kind { return KindRecordList }

func (l RecordList) IsEmpty() bool { return len(l.records) == 0 }

func (l RecordList) Len() int { return len(l.records) }

// Records returns a copy of the records.
func (l RecordList) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

func (l RecordList) Canonical() string {
	lines := make([]string, 0, len(l.records))
	for _, r := range l.records {
		lines = append(lines, r.Canonical())
	}
	return strings.Join(lines, "\n")
}

func (RecordList) isValue() {}

// Language is a spoken language with an optional proficiency level.
type Language struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// LanguageList is an ordered sequence of languages.
type LanguageList struct {
	items []Language
}

// NewLanguageList trims entries and drops the ones without a name.
func NewLanguageList(items ...Language) LanguageList {
	out := LanguageList{items: make([]Language, 0, len(items))}
	for _, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		item.Level = strings.TrimSpace(item.Level)
		if item.Name == "" {
			continue
		}
		out.items = append(out.items, item)
	}
	return out
}

func (LanguageList) Kind() Kind { return KindLanguageList }

func (l LanguageList) IsEmpty() bool { return len(l.items) == 0 }

func (l LanguageList) Len() int { return len(l.items) }

// Items returns a copy of the entries.
func (l LanguageList) Items() []Language {
	out := make([]Language, len(l.items))
	copy(out, l.items)
	return out
}

// Names returns the set of normalized language names; proficiency is ignored.
func (l LanguageList) Names() StringSet {
	names := make([]string, 0, len(l.items))
	for _, item := range l.items {
		names = append(names, item.Name)
	}
	return NewStringSet(names...)
}

func (l LanguageList) Canonical() string {
	parts := make([]string, 0, len(l.items))
	for _, item := range l.items {
		if item.Level == "" {
			parts = append(parts, item.Name)
			continue
		}
		parts = append(parts, item.Name+" ("+item.Level+")")
	}
	return strings.Join(parts, ", ")
}

func (LanguageList) isValue() {}

// FreeText is a single block of prose.
type FreeText string

func (FreeText) Kind() Kind { return KindFreeText }

func (t FreeText) IsEmpty() bool { return strings.TrimSpace(string(t)) == "" }

func (t FreeText) Canonical() string { return strings.TrimSpace(string(t)) }

func (FreeText) isValue() {}
