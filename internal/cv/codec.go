package cv

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed profile.schema.json
var profileSchema string

var loadProfileSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(profileSchema))
})

// ValidationError lists the schema violations of a profile document.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single violation at a JSON path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("profile validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

type profileDocument struct {
	Contact *Contact                  `json:"contact,omitempty"`
	Fields  map[Field]json.RawMessage `json:"fields"`
}

// MarshalJSON encodes the profile with one JSON shape per field kind.
func (p Profile) MarshalJSON() ([]byte, error) {
	doc := profileDocument{Fields: make(map[Field]json.RawMessage, len(p.fields))}
	if !p.contact.IsEmpty() {
		contact := p.contact
		doc.Contact = &contact
	}

	for f, v := range p.fields {
		raw, err := marshalValue(v)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", f, err)
		}
		doc.Fields[f] = raw
	}

	return json.Marshal(doc)
}

// UnmarshalJSON decodes a profile, choosing the variant from the field name.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var doc profileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	fields := make(map[Field]Value, len(doc.Fields))
	for f, raw := range doc.Fields {
		if !f.Known() {
			return fmt.Errorf("unknown field %q", f)
		}
		v, err := unmarshalValue(f.Kind(), raw)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", f, err)
		}
		fields[f] = v
	}

	var contact Contact
	if doc.Contact != nil {
		contact = *doc.Contact
	}

	*p = NewProfile(fields, contact)
	return nil
}

// DecodeProfile validates data against the profile JSON schema and decodes it.
func DecodeProfile(data []byte) (Profile, error) {
	schema, err := loadProfileSchema()
	if err != nil {
		return Profile{}, fmt.Errorf("loading profile schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile document: %w", err)
	}

	if !result.Valid() {
		validationErr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			validationErr.Errors = append(validationErr.Errors, FieldError{
				Field:   field,
				Message: desc.Description(),
			})
		}
		return Profile{}, validationErr
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func marshalValue(v Value) (json.RawMessage, error) {
	switch val := v.(type) {
	case StringSet:
		return json.Marshal(val.Items())
	case RecordList:
		records := make([]map[Attribute]string, 0, val.Len())
		for _, r := range val.records {
			records = append(records, r.Attributes())
		}
		return json.Marshal(records)
	case LanguageList:
		return json.Marshal(val.Items())
	case FreeText:
		return json.Marshal(val.Canonical())
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}

func unmarshalValue(kind Kind, raw json.RawMessage) (Value, error) {
	switch kind {
	case KindStringSet:
		var items []string
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return NewStringSet(items...), nil
	case KindRecordList:
		var items []map[Attribute]string
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(items))
		for _, attrs := range items {
			records = append(records, NewRecord(attrs))
		}
		return NewRecordList(records...), nil
	case KindLanguageList:
		var items []Language
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return NewLanguageList(items...), nil
	case KindFreeText:
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, err
		}
		return FreeText(strings.TrimSpace(text)), nil
	default:
		return nil, fmt.Errorf("unsupported kind %s", kind)
	}
}
