package cv

import "strings"

// Contact holds identity details found outside the scored sections. Every field is optional.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// IsEmpty reports whether no contact detail was found.
func (c Contact) IsEmpty() bool {
	return c.Name == "" && c.Email == "" && c.Phone == ""
}

// Profile is the structured output for one candidate. It is immutable: the
// constructor copies its input and accessors never expose internal state.
type Profile struct {
	fields  map[Field]Value
	contact Contact
}

// NewProfile builds a profile from extracted values. Nil and empty values, unknown
// fields and values whose kind does not match the field are left out, so a field
// is either present with data or absent.
func NewProfile(fields map[Field]Value, contact Contact) Profile {
	p := Profile{
		fields: make(map[Field]Value, len(fields)),
		contact: Contact{
			Name:  strings.TrimSpace(contact.Name),
			Email: strings.TrimSpace(contact.Email),
			Phone: strings.TrimSpace(contact.Phone),
		},
	}
	for f, v := range fields {
		if v == nil || !f.Known() || v.Kind() != f.Kind() || v.IsEmpty() {
			continue
		}
		p.fields[f] = v
	}
	return p
}

// Get returns the value for f and whether it is present.
func (p Profile) Get(f Field) (Value, bool) {
	v, ok := p.fields[f]
	return v, ok
}

// Has reports whether f is present.
func (p Profile) Has(f Field) bool {
	_, ok := p.fields[f]
	return ok
}

// Fields returns the present fields in canonical order.
func (p Profile) Fields() []Field {
	out := make([]Field, 0, len(p.fields))
	for _, f := range canonicalFields {
		if _, ok := p.fields[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

func (p Profile) Contact() Contact { return p.contact }

// IsEmpty reports whether the profile carries no fields and no contact details.
func (p Profile) IsEmpty() bool {
	return len(p.fields) == 0 && p.contact.IsEmpty()
}

// StringSet returns the set stored under f, or an empty set.
func (p Profile) StringSet(f Field) StringSet {
	if set, ok := p.fields[f].(StringSet); ok {
		return set
	}
	return StringSet{}
}

// Languages returns the language list, or an empty list.
func (p Profile) Languages() LanguageList {
	if list, ok := p.fields[FieldLanguages].(LanguageList); ok {
		return list
	}
	return LanguageList{}
}
