package ai

import (
	"context"
	"fmt"
	"sync"
)

// Handle lazily initializes a provider once per process. The first call runs
// init; later calls reuse its result. A failed initialization is permanent and
// every call then reports ErrUnavailable.
type Handle[T any] struct {
	name string
	init func(ctx context.Context) (T, error)

	once  sync.Once
	value T
	err   error
}

// NewHandle wraps init. A nil init yields a handle that is always unavailable.
func NewHandle[T any](name string, init func(ctx context.Context) (T, error)) *Handle[T] {
	return &Handle[T]{name: name, init: init}
}

// Name returns the provider name given at construction.
func (h *Handle[T]) Name() string {
	if h == nil {
		return ""
	}
	return h.name
}

// Get returns the provider, initializing it on first use. Concurrent callers
// block until the single initialization finishes.
func (h *Handle[T]) Get(ctx context.Context) (T, error) {
	var zero T
	if h == nil || h.init == nil {
		return zero, ErrUnavailable
	}

	h.once.Do(func() {
		value, err := h.init(ctx)
		if err != nil {
			h.err = fmt.Errorf("%w: %s: %v", ErrUnavailable, h.name, err)
			return
		}
		h.value = value
	})

	if h.err != nil {
		return zero, h.err
	}
	return h.value, nil
}

// Recognizer adapts a handle to the Recognizer interface.
func (h *Handle[T]) Recognizer() Recognizer {
	return lazyRecognizer[T]{h: h}
}

// Embedder adapts a handle to the Embedder interface.
func (h *Handle[T]) Embedder() Embedder {
	return lazyEmbedder[T]{h: h}
}

type lazyRecognizer[T any] struct{ h *Handle[T] }

func (l lazyRecognizer[T]) Recognize(ctx context.Context, text string) ([]Entity, error) {
	v, err := l.h.Get(ctx)
	if err != nil {
		return nil, err
	}
	r, ok := any(v).(Recognizer)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not recognize entities", ErrUnavailable, l.h.name)
	}
	return r.Recognize(ctx, text)
}

type lazyEmbedder[T any] struct{ h *Handle[T] }

func (l lazyEmbedder[T]) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := l.h.Get(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := any(v).(Embedder)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not embed text", ErrUnavailable, l.h.name)
	}
	return e.Embed(ctx, text)
}
