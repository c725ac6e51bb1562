package gemini

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/cv-compare/internal/logger"
)

// Embedder turns texts into vectors with a Gemini embedding model. Vectors are
// cached by content hash for the lifetime of the embedder.
type Embedder struct {
	models     modelsAPI
	model      string
	maxRetries int
	logger     *zap.Logger

	cacheMu sync.RWMutex
	cache   map[string][]float32
}

// NewEmbedder creates an Embedder backed by the client's models API.
func NewEmbedder(client *genai.Client, opts Options, log *zap.Logger) (*Embedder, error) {
	if client == nil || client.Models == nil {
		return nil, errors.New("gemini client is not initialized")
	}
	return newEmbedder(client.Models, opts, log), nil
}

func newEmbedder(models modelsAPI, opts Options, log *zap.Logger) *Embedder {
	opts = opts.withDefaults()
	return &Embedder{
		models:     models,
		model:      opts.EmbeddingModel,
		maxRetries: opts.MaxRetries,
		logger:     logger.WithProvider(log, "embedding", "gemini", opts.EmbeddingModel),
		cache:      make(map[string][]float32),
	}
}

// Embed returns the embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e == nil || e.models == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	sum := sha256.Sum256([]byte(text))
	key := fmt.Sprintf("%x", sum[:])

	e.cacheMu.RLock()
	cached, ok := e.cache[key]
	e.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	var values []float32
	err := withRetries(ctx, e.logger, e.maxRetries, "embed content", func() error {
		resp, err := e.models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"})
		if err != nil {
			return err
		}
		if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
			return errors.New("gemini api returned empty embedding")
		}
		values = resp.Embeddings[0].Values
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.cacheMu.Lock()
	e.cache[key] = values
	e.cacheMu.Unlock()

	e.logger.Debug("embedded text", zap.Int("dimensions", len(values)))

	return values, nil
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}
