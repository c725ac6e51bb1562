// Package api exposes the analysis engine over HTTP and as MCP tools.
package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spigell/cv-compare/internal/analysis"
	"github.com/spigell/cv-compare/internal/cv"
	"github.com/spigell/cv-compare/internal/document"
	"github.com/spigell/cv-compare/internal/storage"
)

const maxBodySize = 20 << 20

// Deps holds what the HTTP handler and the MCP server need. Store is optional;
// without it saving and history lookups are rejected.
type Deps struct {
	Engine *analysis.Engine
	Store  *storage.Store
	Logger *zap.Logger
}

func (d Deps) log() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// DocumentInput carries a résumé either as plain text or as a base64 encoded
// file whose format follows Name.
type DocumentInput struct {
	Text    string `json:"text,omitempty"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content,omitempty"`
}

// Resolve returns the document text.
func (in DocumentInput) Resolve() (string, error) {
	if in.Content == "" {
		if strings.TrimSpace(in.Text) == "" {
			return "", errors.New("one of text or content is required")
		}
		return in.Text, nil
	}

	if in.Name == "" {
		return "", errors.New("name is required with content")
	}
	data, err := base64.StdEncoding.DecodeString(in.Content)
	if err != nil {
		return "", fmt.Errorf("decoding content: %w", err)
	}
	return document.Parse(in.Name, data)
}

// AnalyzeResponse is the body returned by POST /v1/analyze.
type AnalyzeResponse struct {
	Sections cv.SectionMap `json:"sections"`
	Profile  cv.Profile    `json:"profile"`
}

// CompareRequest is the body accepted by POST /v1/compare.
type CompareRequest struct {
	A    DocumentInput `json:"a"`
	B    DocumentInput `json:"b"`
	Save bool          `json:"save,omitempty"`
}

// CompareResponse is the body returned by POST /v1/compare.
type CompareResponse struct {
	ID string `json:"id,omitempty"`
	analysis.Comparison
}

// NewHandler returns the HTTP router.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", handleHealth)
	r.Post("/v1/analyze", handleAnalyze(deps))
	r.Post("/v1/compare", handleCompare(deps))
	r.Get("/v1/comparisons", handleListComparisons(deps))
	r.Get("/v1/comparisons/{id}", handleGetComparison(deps))

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleAnalyze(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		defer r.Body.Close()

		var req DocumentInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		text, err := req.Resolve()
		if err != nil {
			httpError(w, statusFor(err), "invalid_request_error", "%v", err)
			return
		}

		sections, profile := deps.Engine.Analyze(r.Context(), text)
		writeJSON(w, http.StatusOK, AnalyzeResponse{Sections: sections, Profile: profile})
	}
}

func handleCompare(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		defer r.Body.Close()

		var req CompareRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		textA, err := req.A.Resolve()
		if err != nil {
			httpError(w, statusFor(err), "invalid_request_error", "candidate a: %v", err)
			return
		}
		textB, err := req.B.Resolve()
		if err != nil {
			httpError(w, statusFor(err), "invalid_request_error", "candidate b: %v", err)
			return
		}

		if req.Save && deps.Store == nil {
			httpError(w, http.StatusServiceUnavailable, "unavailable_error", "history storage is not configured")
			return
		}

		resp := CompareResponse{Comparison: deps.Engine.CompareTexts(r.Context(), textA, textB)}

		if req.Save {
			rec, err := deps.Store.Save(r.Context(), req.A.Name, req.B.Name, resp.Comparison)
			if err != nil {
				deps.log().Error("saving comparison", zap.Error(err))
				httpError(w, http.StatusInternalServerError, "api_error", "saving comparison: %v", err)
				return
			}
			resp.ID = rec.ID
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func handleListComparisons(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Store == nil {
			httpError(w, http.StatusServiceUnavailable, "unavailable_error", "history storage is not configured")
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "limit must be a non-negative integer")
				return
			}
			limit = n
		}

		items, err := deps.Store.List(r.Context(), limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing comparisons: %v", err)
			return
		}
		if items == nil {
			items = []storage.Summary{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"comparisons": items})
	}
}

func handleGetComparison(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Store == nil {
			httpError(w, http.StatusServiceUnavailable, "unavailable_error", "history storage is not configured")
			return
		}

		id := chi.URLParam(r, "id")
		rec, err := deps.Store.Get(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "comparison %s not found", id)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading comparison: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func statusFor(err error) int {
	if errors.Is(err, document.ErrUnsupportedFormat) {
		return http.StatusUnsupportedMediaType
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}
