package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/cv-compare/internal/analysis"
	"github.com/spigell/cv-compare/internal/cv"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleComparison() analysis.Comparison {
	a := cv.NewProfile(map[cv.Field]cv.Value{
		cv.FieldSkills: cv.NewStringSet("Go", "SQL"),
	}, cv.Contact{Name: "Jane Doe"})
	b := cv.NewProfile(map[cv.Field]cv.Value{
		cv.FieldSkills: cv.NewStringSet("Go"),
	}, cv.Contact{Name: "John Roe", Email: "john@example.com"})

	return analysis.Comparison{
		A:      a,
		B:      b,
		Score:  cv.ScoreReport{Composite: 0.1, Fields: map[cv.Field]float64{cv.FieldSkills: 0.5}},
		Report: []string{"Comparison of Jane Doe and John Roe"},
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "history.db")

	s1, err := Open(path)
	require.NoError(t, err)
	v1, err := s1.AppliedMigrations()
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	v2, err := s2.AppliedMigrations()
	require.NoError(t, err)

	assert.Equal(t, []int{1}, v1)
	assert.Equal(t, v1, v2)
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, "a.pdf", "b.pdf", sampleComparison())
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, "Jane Doe", saved.NameA)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "b.pdf", got.SourceB)
	assert.Equal(t, "John Roe", got.NameB)
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, 0.5, got.Comparison.Score.Fields[cv.FieldSkills])
	assert.Equal(t, "john@example.com", got.Comparison.B.Contact().Email)

	assert.Equal(t, 2, got.Comparison.A.StringSet(cv.FieldSkills).Len())
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 3 {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		rec, err := s.Save(ctx, "", "", sampleComparison())
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	list, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
