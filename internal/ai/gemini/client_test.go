package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeResponse struct {
	resp  *genai.GenerateContentResponse
	embed *genai.EmbedContentResponse
	err   error
}

type callRecord struct {
	model  string
	text   string
	config *genai.GenerateContentConfig
}

type fakeModels struct {
	mu     sync.Mutex
	calls  []callRecord
	queue  []fakeResponse
	embeds int
}

func (f *fakeModels) enqueue(resp fakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, resp)
}

func (f *fakeModels) next() (fakeResponse, error) {
	if len(f.queue) == 0 {
		return fakeResponse{}, errors.New("unexpected call")
	}
	res := f.queue[0]
	f.queue = f.queue[1:]
	return res, nil
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, callRecord{model: model, text: contents[0].Parts[0].Text, config: config})
	res, err := f.next()
	if err != nil {
		return nil, err
	}
	return res.resp, res.err
}

func (f *fakeModels) EmbedContent(_ context.Context, model string, contents []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds++
	f.calls = append(f.calls, callRecord{model: model, text: contents[0].Parts[0].Text})
	res, err := f.next()
	if err != nil {
		return nil, err
	}
	return res.embed, res.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func noSleep(t *testing.T) {
	originalSleep := sleep
	sleep = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { sleep = originalSleep })
}

func TestGeneratorRetriesOnTemporaryError(t *testing.T) {
	noSleep(t)

	models := &fakeModels{}
	tempErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	models.enqueue(fakeResponse{err: tempErr})
	models.enqueue(fakeResponse{resp: textResponse("retry ok")})

	g := newGenerator(models, Options{Model: "gemini-pro", MaxRetries: 2}, zap.NewNop())

	output, err := g.GenerateContent(context.Background(), "system", "message")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != "retry ok" {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(models.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.calls))
	}

	for _, call := range models.calls {
		if call.model != "gemini-pro" {
			t.Fatalf("unexpected model: %q", call.model)
		}
		if call.config == nil || call.config.SystemInstruction == nil {
			t.Fatalf("expected system instruction to be set")
		}
		if got := call.config.SystemInstruction.Parts[0].Text; got != "system" {
			t.Fatalf("unexpected system instruction: %q", got)
		}
		if call.text != "message" {
			t.Fatalf("unexpected message: %q", call.text)
		}
	}
}

func TestGeneratorStopsAfterRetriesExhausted(t *testing.T) {
	noSleep(t)

	models := &fakeModels{}
	tempErr := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	models.enqueue(fakeResponse{err: tempErr})
	models.enqueue(fakeResponse{err: tempErr})

	g := newGenerator(models, Options{MaxRetries: 2}, zap.NewNop())

	_, err := g.GenerateContent(context.Background(), "sys", "msg")
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected wrapped api error, got %v", err)
	}

	if len(models.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.calls))
	}
}

func TestGeneratorDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	models := &fakeModels{}
	quotaErr := genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	}
	models.enqueue(fakeResponse{err: quotaErr})

	g := newGenerator(models, Options{MaxRetries: 3}, zap.NewNop())

	_, err := g.GenerateContent(context.Background(), "sys", "msg")
	if err == nil {
		t.Fatal("expected error when quota delay too long")
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}
}

func TestGeneratorDoesNotRetryClientErrors(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(fakeResponse{err: genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}})

	g := newGenerator(models, Options{MaxRetries: 3}, zap.NewNop())

	if _, err := g.GenerateContent(context.Background(), "", "msg"); err == nil {
		t.Fatal("expected error")
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}
}

func TestRetryDelayUsesServerHint(t *testing.T) {
	err := genai.APIError{
		Code:    http.StatusTooManyRequests,
		Details: []map[string]any{{"@type": "type.googleapis.com/google.rpc.RetryInfo", "retryDelay": "7s"}},
	}

	delay, retry := retryDelay(err, 1)
	if !retry {
		t.Fatal("expected retry")
	}
	if delay != 7*time.Second {
		t.Fatalf("expected 7s, got %s", delay)
	}
}

func TestEmbedderCachesByContent(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(fakeResponse{embed: &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2}}},
	}})

	e := newEmbedder(models, Options{EmbeddingModel: "embed-test"}, zap.NewNop())

	for i := 0; i < 3; i++ {
		values, err := e.Embed(context.Background(), " backend engineer ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(values) != 2 {
			t.Fatalf("unexpected vector: %v", values)
		}
	}

	if models.embeds != 1 {
		t.Fatalf("expected a single embed call, got %d", models.embeds)
	}
	if models.calls[0].model != "embed-test" {
		t.Fatalf("unexpected model: %q", models.calls[0].model)
	}
}

func TestEmbedderRejectsEmptyEmbedding(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(fakeResponse{embed: &genai.EmbedContentResponse{}})

	e := newEmbedder(models, Options{MaxRetries: 1}, zap.NewNop())

	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error for empty embedding")
	}
}
