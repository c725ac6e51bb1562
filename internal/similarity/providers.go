package similarity

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/spigell/cv-compare/internal/ai"
	"github.com/spigell/cv-compare/internal/textnorm"
)

// TokenOverlap is an offline provider: the cosine of term-frequency vectors
// over folded word tokens.
type TokenOverlap struct{}

func (TokenOverlap) Similarity(_ context.Context, a, b string) (float64, error) {
	ta, tb := termFrequencies(a), termFrequencies(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0, nil
	}

	// Sums run over sorted terms; sim(a, b) and sim(b, a) are bit-identical.
	var dot float64
	for _, term := range sortedTerms(ta) {
		if fb, ok := tb[term]; ok {
			dot += ta[term] * fb
		}
	}

	return dot / (termNorm(ta) * termNorm(tb)), nil
}

func sortedTerms(tf map[string]float64) []string {
	terms := make([]string, 0, len(tf))
	for term := range tf {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

func termNorm(tf map[string]float64) float64 {
	var sum float64
	for _, term := range sortedTerms(tf) {
		sum += tf[term] * tf[term]
	}
	return math.Sqrt(sum)
}

func termFrequencies(s string) map[string]float64 {
	out := make(map[string]float64)
	tokens := strings.FieldsFunc(textnorm.Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	for _, t := range tokens {
		if utf8.RuneCountInString(t) < 2 {
			continue
		}
		out[t]++
	}
	return out
}

// Embedding scores texts by the cosine of their embeddings.
type Embedding struct {
	embedder ai.Embedder
}

func NewEmbedding(embedder ai.Embedder) *Embedding {
	return &Embedding{embedder: embedder}
}

func (e *Embedding) Similarity(ctx context.Context, a, b string) (float64, error) {
	if e == nil || e.embedder == nil {
		return 0, ai.ErrUnavailable
	}

	var va, vb []float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		va, err = e.embedder.Embed(gctx, a)
		return err
	})
	g.Go(func() (err error) {
		vb, err = e.embedder.Embed(gctx, b)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if len(va) != len(vb) {
		return 0, errors.New("embedding dimensions differ")
	}
	return Cosine(va, vb), nil
}

// Cosine returns dot(a,b) / (|a| |b|), or 0 for mismatched or zero vectors.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	an := norm(a)
	if an == 0 {
		return 0
	}
	return dotProduct(a, b, an)
}

// norm returns the L2 norm of a vector.
func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

// dotProduct computes cosine similarity as dot(a,b) / (aNorm * bNorm).
func dotProduct(a, b []float32, aNorm float64) float64 {
	var dot, bNormSq float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		bNormSq += float64(b[i]) * float64(b[i])
	}
	bNorm := math.Sqrt(bNormSq)
	if bNorm == 0 {
		return 0
	}
	return dot / (aNorm * bNorm)
}
