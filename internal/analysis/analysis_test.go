package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/cv-compare/internal/ai/heuristic"
	"github.com/spigell/cv-compare/internal/cv"
	"github.com/spigell/cv-compare/internal/scoring"
	"github.com/spigell/cv-compare/internal/similarity"
)

const resumeA = `Jane Doe
jane@example.com

SUMMARY
Backend developer focused on payments.

EXPERIENCE
Backend Engineer
Acme Inc, Jan 2019 - Present

SKILLS
Python, Django, SQL

LANGUAGES
English (Fluent), German (B1)
`

const resumeB = `John Roe

ÖZET
Backend engineer working on payments.

DENEYİM
Software Engineer
Globex Corp, 2016 - 2019

YETENEKLER
Python, Flask, NoSQL

YABANCI DİL
English - Advanced
`

func TestCompareTexts(t *testing.T) {
	t.Parallel()

	engine, err := New(Options{Recognizer: heuristic.New(), Semantic: similarity.TokenOverlap{}})
	require.NoError(t, err)

	result := engine.CompareTexts(context.Background(), resumeA, resumeB)

	assert.Equal(t, "Jane Doe", result.A.Contact().Name)
	assert.Equal(t, "John Roe", result.B.Contact().Name)
	assert.InDelta(t, 0.2, result.Score.Fields[cv.FieldSkills], 1e-9)
	assert.Equal(t, 0.5, result.Score.Fields[cv.FieldLanguages])

	exp, ok := result.A.Get(cv.FieldExperience)
	require.True(t, ok)
	rec := exp.(cv.RecordList).Records()[0]
	inst, _ := rec.Get(cv.AttrInstitution)
	assert.Equal(t, "Acme Inc", inst)

	assert.GreaterOrEqual(t, result.Score.Composite, 0.0)
	assert.LessOrEqual(t, result.Score.Composite, 1.0)
	assert.True(t, strings.HasPrefix(result.Report[0], "Comparison of Candidate A (Jane Doe)"))
}

func TestCompareTextsIdentical(t *testing.T) {
	t.Parallel()

	engine, err := New(Options{Recognizer: heuristic.New()})
	require.NoError(t, err)

	result := engine.CompareTexts(context.Background(), resumeA, resumeA)
	assert.Len(t, result.Score.Fields, 4)
	for f, s := range result.Score.Fields {
		assert.Equal(t, 1.0, s, f)
	}
	// experience, skills, summary and languages carry 0.61 of the weight.
	assert.Equal(t, 0.61, result.Score.Composite)
	assert.Contains(t, result.Report[1], "moderately compatible")
}

func TestAnalyzeWithoutHeadings(t *testing.T) {
	t.Parallel()

	engine, err := New(Options{})
	require.NoError(t, err)

	sections, profile := engine.Analyze(context.Background(), "just some prose\nwithout headings")
	assert.Equal(t, []cv.Section{cv.SectionGeneral}, sections.Sections())
	assert.Empty(t, profile.Fields())
}

func TestNewRejectsInvalidWeights(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Weights: scoring.Weights{cv.FieldSkills: 0.5}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, scoring.ErrInvalidWeights))
}
