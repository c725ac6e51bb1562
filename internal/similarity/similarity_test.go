package similarity

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/cv-compare/internal/ai"
	"github.com/spigell/cv-compare/internal/cv"
)

type fixedSemantic struct {
	score float64
	err   error
	calls int
}

func (f *fixedSemantic) Similarity(context.Context, string, string) (float64, error) {
	f.calls++
	return f.score, f.err
}

type mapEmbedder map[string][]float32

func (m mapEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v, ok := m[text]
	if !ok {
		return nil, errors.New("unknown text")
	}
	return v, nil
}

func TestJaccard(t *testing.T) {
	t.Parallel()

	a := cv.NewStringSet("python", "django", "sql")
	b := cv.NewStringSet("python", "flask", "nosql")

	assert.InDelta(t, 0.2, Jaccard(a, b), 1e-12)
	assert.Equal(t, Jaccard(a, b), Jaccard(b, a))
	assert.Equal(t, 1.0, Jaccard(a, a))
	assert.Equal(t, 0.0, Jaccard(cv.NewStringSet(), b))
	assert.Equal(t, 0.0, Jaccard(cv.NewStringSet(), cv.NewStringSet()))
}

func TestJaccardBounded(t *testing.T) {
	t.Parallel()

	sets := []cv.StringSet{
		cv.NewStringSet("a1", "b2"),
		cv.NewStringSet("b2", "c3", "d4"),
		cv.NewStringSet("x"),
		cv.NewStringSet(),
		cv.NewStringSet("a1", "b2", "c3", "d4", "x"),
	}

	for _, a := range sets {
		for _, b := range sets {
			s := Jaccard(a, b)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
			assert.Equal(t, s, Jaccard(b, a))
		}
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Clamp(-0.4))
	assert.Equal(t, 0.0, Clamp(math.NaN()))
	assert.Equal(t, 1.0, Clamp(1.0000001))
	assert.Equal(t, 0.3, Clamp(0.3))
}

func TestScorerDispatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sem := &fixedSemantic{score: -0.5}
	s := NewScorer(sem, nil)

	langA := cv.NewLanguageList(cv.Language{Name: "English", Level: "C1"}, cv.Language{Name: "German"})
	langB := cv.NewLanguageList(cv.Language{Name: "english", Level: "B2"})
	assert.Equal(t, 0.5, s.Score(ctx, langA, langB))

	recA := cv.NewRecordList(cv.NewRecord(map[cv.Attribute]string{cv.AttrRaw: "Backend developer"}))
	recB := cv.NewRecordList(cv.NewRecord(map[cv.Attribute]string{cv.AttrRaw: "Frontend designer"}))
	assert.Equal(t, 0.0, s.Score(ctx, recA, recB), "negative semantic score is floored")
	assert.Equal(t, 1.0, s.Score(ctx, recA, recA))
	assert.Equal(t, 1, sem.calls)

	assert.Equal(t, 0.0, s.Score(ctx, cv.FreeText("x"), nil))
	assert.Equal(t, 0.0, s.Score(ctx, cv.FreeText(""), cv.FreeText("")))
	assert.Equal(t, 0.0, s.Score(ctx, cv.FreeText("x"), cv.NewStringSet("x")))
}

func TestScorerDegradesWithoutSemanticProvider(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, b := cv.FreeText("backend developer"), cv.FreeText("backend engineer")

	assert.Equal(t, 0.0, NewScorer(nil, nil).Score(ctx, a, b))
	assert.Equal(t, 0.0, NewScorer(&fixedSemantic{err: ai.ErrUnavailable}, nil).Score(ctx, a, b))
	assert.Equal(t, 1.0, NewScorer(nil, nil).Score(ctx, a, a))
}

func TestTokenOverlap(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	got, err := TokenOverlap{}.Similarity(ctx, "Backend Developer", "backend engineer")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-9)

	reverse, err := TokenOverlap{}.Similarity(ctx, "backend engineer", "Backend Developer")
	require.NoError(t, err)
	assert.Equal(t, got, reverse)

	none, err := TokenOverlap{}.Similarity(ctx, "Go", "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, none)
}

func TestTokenOverlapReproducible(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a := "Senior backend engineer building Go services, Kafka pipelines, PostgreSQL schemas and Go tooling"
	b := "Backend developer: Go, Kafka, Redis, PostgreSQL, Kubernetes operators and internal tooling"

	first, err := TokenOverlap{}.Similarity(ctx, a, b)
	require.NoError(t, err)
	for range 50 {
		again, err := TokenOverlap{}.Similarity(ctx, a, b)
		require.NoError(t, err)
		require.Equal(t, first, again)

		reverse, err := TokenOverlap{}.Similarity(ctx, b, a)
		require.NoError(t, err)
		require.Equal(t, first, reverse)
	}
}

func TestEmbeddingSimilarity(t *testing.T) {
	t.Parallel()

	e := NewEmbedding(mapEmbedder{
		"a": {1, 0},
		"b": {1, 1},
		"c": {-1, 0},
		"d": {1, 0, 0},
	})
	ctx := context.Background()

	got, err := e.Similarity(ctx, "a", "b")
	require.NoError(t, err)
	assert.InDelta(t, 1/math.Sqrt2, got, 1e-9)

	got, err = e.Similarity(ctx, "a", "c")
	require.NoError(t, err)
	assert.InDelta(t, -1.0, got, 1e-9)

	_, err = e.Similarity(ctx, "a", "d")
	assert.Error(t, err)

	_, err = e.Similarity(ctx, "a", "missing")
	assert.Error(t, err)

	_, err = NewEmbedding(nil).Similarity(ctx, "a", "b")
	assert.ErrorIs(t, err, ai.ErrUnavailable)
}

func TestCosine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Cosine(nil, nil))
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 0}))
	assert.InDelta(t, 1.0, Cosine([]float32{2, 2}, []float32{1, 1}), 1e-9)
}
