package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/cv-compare/internal/ai"
	"github.com/spigell/cv-compare/internal/ai/gemini"
	"github.com/spigell/cv-compare/internal/ai/heuristic"
	"github.com/spigell/cv-compare/internal/analysis"
	"github.com/spigell/cv-compare/internal/logger"
	"github.com/spigell/cv-compare/internal/secrets"
	"github.com/spigell/cv-compare/internal/similarity"
)

const (
	providerGemini    = "gemini"
	providerHeuristic = "heuristic"
	providerToken     = "token"
	providerNone      = "none"

	geminiAPIKeyEnv = "GEMINI_API_KEY"
)

// newEngine builds the analysis engine with the configured providers. Gemini
// providers are initialized on first use so commands that never reach them
// do not need an API key.
func newEngine(config *Config, log *zap.Logger) (*analysis.Engine, error) {
	weights, err := config.weights()
	if err != nil {
		return nil, err
	}

	client := ai.NewHandle("gemini client", func(ctx context.Context) (*genai.Client, error) {
		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: config.Gemini.APIKeyFile,
			Env:  geminiAPIKeyEnv,
		})
		if err != nil {
			return nil, err
		}
		return gemini.NewClient(ctx, apiKey)
	})

	opts := gemini.Options{
		Model:          config.Gemini.Model,
		EmbeddingModel: config.Gemini.EmbeddingModel,
		MaxRetries:     config.Gemini.MaxRetries,
		MaxLogLength:   config.Gemini.MaxLogLength,
	}

	recognizer, err := newRecognizer(config.NER.Provider, client, opts, log)
	if err != nil {
		return nil, err
	}

	semantic, err := newSemantic(config.Similarity.Provider, client, opts, log)
	if err != nil {
		return nil, err
	}

	return analysis.New(analysis.Options{
		Recognizer: recognizer,
		Semantic:   semantic,
		Weights:    weights,
		Logger:     log,
	})
}

func newRecognizer(provider string, client *ai.Handle[*genai.Client], opts gemini.Options, log *zap.Logger) (ai.Recognizer, error) {
	switch provider {
	case providerHeuristic, "":
		return heuristic.New(), nil
	case providerNone:
		return nil, nil
	case providerGemini:
		nerLogger := logger.WithProvider(log, "ner", providerGemini, opts.Model)
		handle := ai.NewHandle("gemini ner", func(ctx context.Context) (*gemini.Recognizer, error) {
			c, err := client.Get(ctx)
			if err != nil {
				return nil, err
			}
			generator, err := gemini.NewGenerator(c, opts, log)
			if err != nil {
				return nil, err
			}
			return gemini.NewRecognizer(generator, nerLogger), nil
		})
		return handle.Recognizer(), nil
	default:
		return nil, fmt.Errorf("unsupported ner provider: %s", provider)
	}
}

func newSemantic(provider string, client *ai.Handle[*genai.Client], opts gemini.Options, log *zap.Logger) (similarity.Semantic, error) {
	switch provider {
	case providerToken, "":
		return similarity.TokenOverlap{}, nil
	case providerNone:
		return nil, nil
	case providerGemini:
		handle := ai.NewHandle("gemini embeddings", func(ctx context.Context) (*gemini.Embedder, error) {
			c, err := client.Get(ctx)
			if err != nil {
				return nil, err
			}
			return gemini.NewEmbedder(c, opts, log)
		})
		return similarity.NewEmbedding(handle.Embedder()), nil
	default:
		return nil, fmt.Errorf("unsupported similarity provider: %s", provider)
	}
}
