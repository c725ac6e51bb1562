package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/cv-compare/internal/ai"
	"github.com/spigell/cv-compare/internal/cv"
)

type stubRecognizer struct {
	entities map[string][]ai.Entity
	err      error
}

func (s stubRecognizer) Recognize(_ context.Context, text string) ([]ai.Entity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.entities[text], nil
}

func TestSkills(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "mixed delimiters",
			body: "Python, Django; SQL\n• Docker\tGo",
			want: []string{"django", "docker", "python", "sql"},
		},
		{
			name: "duplicates collapse",
			body: "Python, python ,PYTHON",
			want: []string{"python"},
		},
		{
			name: "sentence fragments dropped",
			body: "Go, I have worked on many different things over years, Kubernetes",
			want: []string{"kubernetes"},
		},
		{
			name: "dash markers trimmed",
			body: "- Teamwork\n- Communication",
			want: []string{"communication", "teamwork"},
		},
		{
			name: "empty body",
			body: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Skills(tt.body).Items())
		})
	}
}

func TestLanguages(t *testing.T) {
	t.Parallel()

	got := Languages("English (Fluent), İngilizce - İleri Seviye\nGerman B1; Klingon\nUpper-Intermediate")

	assert.Equal(t, []cv.Language{
		{Name: "English", Level: "Fluent"},
		{Name: "İngilizce", Level: "İleri Seviye"},
		{Name: "German", Level: "B1"},
		{Name: "Klingon"},
		{Name: "Upper-Intermediate"},
	}, got.Items())
}

func TestRecordsWithRecognizer(t *testing.T) {
	t.Parallel()

	entry := "Backend Engineer\nAcme Inc, 2019 - 2021\nBuilt billing services"
	e := New(stubRecognizer{entities: map[string][]ai.Entity{
		entry: {
			{Text: "Acme Inc", Type: ai.EntityOrganization},
			{Text: "2019 - 2021", Type: ai.EntityDate},
			{Text: "2022", Type: ai.EntityDate},
		},
	}}, zap.NewNop())

	list := e.Records(context.Background(), entry+"\n\nIntern\nGlobex", shapeDetailed)
	require.Equal(t, 2, list.Len())

	first := list.Records()[0]
	raw, _ := first.Get(cv.AttrRaw)
	desc, _ := first.Get(cv.AttrDescription)
	inst, _ := first.Get(cv.AttrInstitution)
	date, _ := first.Get(cv.AttrDate)
	assert.Equal(t, "Backend Engineer", raw)
	assert.Equal(t, "Acme Inc, 2019 - 2021 Built billing services", desc)
	assert.Equal(t, "Acme Inc", inst)
	assert.Equal(t, "2019 - 2021", date)

	second := list.Records()[1]
	_, hasDate := second.Get(cv.AttrDate)
	assert.False(t, hasDate)
}

func TestRecordsDegradeWithoutRecognizer(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	e := New(stubRecognizer{err: ai.ErrUnavailable}, zap.New(core))

	list := e.Records(context.Background(), "AWS Solutions Architect\n• CKA 2022", shapeSimple)
	require.Equal(t, 2, list.Len())

	raw, _ := list.Records()[1].Get(cv.AttrRaw)
	assert.Equal(t, "CKA 2022", raw)
	assert.Equal(t, 1, logs.Len())
}

func TestRecordsFallBackToWholeBody(t *testing.T) {
	t.Parallel()

	e := New(nil, nil)
	list := e.Records(context.Background(), "•\n•  \n-", shapeDetailed)
	require.Equal(t, 1, list.Len())

	raw, _ := list.Records()[0].Get(cv.AttrRaw)
	assert.Equal(t, "•\n•  \n-", raw)
}

func TestReferences(t *testing.T) {
	t.Parallel()

	body := "Jane Smith, Acme Inc\nEmail: jane@acme.com\nPhone: +90 (555) 123 45 67\n\nJohn Roe\nTel: 555-1234567; Mary Major"
	list := References(body)
	require.Equal(t, 3, list.Len())
	records := list.Records()

	name, _ := records[0].Get(cv.AttrName)
	email, _ := records[0].Get(cv.AttrEmail)
	phone, _ := records[0].Get(cv.AttrPhone)
	assert.Equal(t, "Jane Smith, Acme Inc", name)
	assert.Equal(t, "jane@acme.com", email)
	assert.Equal(t, "+90 (555) 123 45 67", phone)

	name, _ = records[1].Get(cv.AttrName)
	phone, _ = records[1].Get(cv.AttrPhone)
	_, hasEmail := records[1].Get(cv.AttrEmail)
	assert.Equal(t, "John Roe", name)
	assert.Equal(t, "555-1234567", phone)
	assert.False(t, hasEmail)

	name, _ = records[2].Get(cv.AttrName)
	_, hasPhone := records[2].Get(cv.AttrPhone)
	assert.Equal(t, "Mary Major", name)
	assert.False(t, hasPhone)
}

func TestReferencesLabelOnlyFirstLine(t *testing.T) {
	t.Parallel()

	list := References("E-posta: ali@example.com")
	require.Equal(t, 1, list.Len())

	_, hasName := list.Records()[0].Get(cv.AttrName)
	assert.False(t, hasName)
}

func TestReferencesShortNumbersAreNotPhones(t *testing.T) {
	t.Parallel()

	_, ok := FindPhone("Room 12-34")
	assert.False(t, ok)
}

func TestFindPhoneSkipsDates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "birth date", text: "Doğum Tarihi: 12.05.1990"},
		{name: "iso date", text: "Since 2019-03-01"},
		{name: "year range", text: "Acme (2015-2020)"},
		{name: "spaced year range", text: "Acme 2015 - 2020"},
		{name: "date then phone", text: "12/05/1990\nTel: +90 555 123 45 67", want: "+90 555 123 45 67"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := FindPhone(tt.text)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReferencesNameCleanup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantName  string
		wantPhone string
	}{
		{
			name:      "inline phone label",
			body:      "Jane Doe, Manager, Phone: +1 555 123 4567",
			wantName:  "Jane Doe, Manager",
			wantPhone: "+1 555 123 4567",
		},
		{
			name:      "phone in brackets",
			body:      "Jane Doe, Acme Corp (+1 555 123 4567)",
			wantName:  "Jane Doe, Acme Corp",
			wantPhone: "+1 555 123 4567",
		},
		{
			name:     "years stay in the name",
			body:     "Jane Doe, Acme Corp (2015-2020)\njane@acme.com",
			wantName: "Jane Doe, Acme Corp (2015-2020)",
		},
		{
			name:     "email label between fields",
			body:     "John Roe, E-mail: john@roe.dev, Globex",
			wantName: "John Roe, Globex",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			list := References(tt.body)
			require.Equal(t, 1, list.Len())
			record := list.Records()[0]

			name, _ := record.Get(cv.AttrName)
			assert.Equal(t, tt.wantName, name)

			phone, hasPhone := record.Get(cv.AttrPhone)
			assert.Equal(t, tt.wantPhone != "", hasPhone)
			assert.Equal(t, tt.wantPhone, phone)
		})
	}
}

func TestContact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sections cv.SectionMap
		want     cv.Contact
	}{
		{
			name:     "labelled name",
			sections: cv.SectionMap{cv.SectionGeneral: "Curriculum Vitae\nAd Soyad: Ayşe Yılmaz\nayse@example.com"},
			want:     cv.Contact{Name: "Ayşe Yılmaz", Email: "ayse@example.com"},
		},
		{
			name: "name-like first line and contact section",
			sections: cv.SectionMap{
				cv.SectionGeneral: "Jane Doe\nSenior backend engineer",
				cv.SectionContact: "jane@example.com | +1 415 555 0100",
			},
			want: cv.Contact{Name: "Jane Doe", Email: "jane@example.com", Phone: "+1 415 555 0100"},
		},
		{
			name:     "birth date is not a phone",
			sections: cv.SectionMap{cv.SectionGeneral: "Ali Veli\nDoğum Tarihi: 12.05.1990\nTel: +90 555 123 45 67"},
			want:     cv.Contact{Name: "Ali Veli", Phone: "+90 555 123 45 67"},
		},
		{
			name:     "nothing found",
			sections: cv.SectionMap{cv.SectionSkills: "Go"},
			want:     cv.Contact{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Contact(tt.sections))
		})
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()

	sections := cv.SectionMap{
		cv.SectionGeneral:   "Jane Doe",
		cv.SectionSkills:    "Go, SQL",
		cv.SectionSummary:   "  Backend developer.  ",
		cv.SectionLanguages: "English (C1)",
		cv.SectionEducation: "MIT\n2010 - 2014",
		cv.SectionCourses:   "ab",
	}

	p := New(stubRecognizer{err: errors.New("offline")}, zap.NewNop()).Extract(context.Background(), sections)

	assert.Equal(t, []cv.Field{cv.FieldSkills, cv.FieldEducation, cv.FieldSummary, cv.FieldLanguages, cv.FieldCourses}, p.Fields())
	assert.False(t, p.Has(cv.FieldExperience))
	assert.Equal(t, "Jane Doe", p.Contact().Name)

	summary, _ := p.Get(cv.FieldSummary)
	assert.Equal(t, "Backend developer.", summary.Canonical())
}

func TestExtractEmptySections(t *testing.T) {
	t.Parallel()

	p := New(nil, nil).Extract(context.Background(), cv.SectionMap{})
	assert.True(t, p.IsEmpty())
}
