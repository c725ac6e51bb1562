package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/cv-compare/internal/ai/gemini"
	"github.com/spigell/cv-compare/internal/cv"
	"github.com/spigell/cv-compare/internal/scoring"
)

func TestConfigWeights(t *testing.T) {
	cfg := &Config{}
	w, err := cfg.weights()
	require.NoError(t, err)
	assert.Equal(t, scoring.DefaultWeights(), w)

	cfg.Weights = map[string]float64{"experience": 0.20, "personal-skills": 0.08}
	w, err = cfg.weights()
	require.NoError(t, err)
	assert.InDelta(t, 0.20, w[cv.FieldExperience], 1e-12)
	assert.InDelta(t, 0.08, w[cv.FieldPersonalSkills], 1e-12)

	cfg.Weights = map[string]float64{"experience": 0.5}
	_, err = cfg.weights()
	assert.True(t, errors.Is(err, scoring.ErrInvalidWeights))

	cfg.Weights = map[string]float64{"hobbies": 0}
	_, err = cfg.weights()
	assert.True(t, errors.Is(err, scoring.ErrInvalidWeights))
}

func TestWriteStructured(t *testing.T) {
	v := map[string]any{"score": 0.5, "fields": []string{"SKILLS"}}

	var out bytes.Buffer
	require.NoError(t, writeStructured(&out, formatJSON, v))
	assert.Contains(t, out.String(), `"score": 0.5`)

	out.Reset()
	require.NoError(t, writeStructured(&out, formatYAML, v))
	assert.Contains(t, out.String(), "score: 0.5")
	assert.True(t, strings.Contains(out.String(), "- SKILLS"))
}

func TestProviderSelection(t *testing.T) {
	r, err := newRecognizer(providerNone, nil, gemini.Options{}, nil)
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = newRecognizer(providerHeuristic, nil, gemini.Options{}, nil)
	require.NoError(t, err)
	assert.NotNil(t, r)

	_, err = newRecognizer(providerToken, nil, gemini.Options{}, nil)
	assert.Error(t, err)

	s, err := newSemantic(providerNone, nil, gemini.Options{}, nil)
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = newSemantic(providerHeuristic, nil, gemini.Options{}, nil)
	assert.Error(t, err)
}
