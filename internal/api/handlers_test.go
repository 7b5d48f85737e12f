package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/stocklens/internal/engine"
	"github.com/stocklens/stocklens/internal/models"
	"github.com/stocklens/stocklens/internal/provider"
)

type stubScraper struct {
	lastURL string
	result  *engine.Result
}

func (s *stubScraper) Scrape(ctx context.Context, rawURL string) *engine.Result {
	s.lastURL = rawURL
	return s.result
}

type stubPromptService struct {
	lastProvider string
	lastKey      string
	lastRequest  *provider.Request
	generate     *provider.GenerateResponse
	validate     *provider.ValidateResponse
	infos        []provider.Info
}

func (s *stubPromptService) GeneratePrompt(ctx context.Context, providerID, apiKey string, req *provider.Request) *provider.GenerateResponse {
	s.lastProvider = providerID
	s.lastKey = apiKey
	s.lastRequest = req
	return s.generate
}

func (s *stubPromptService) ValidateAPIKey(ctx context.Context, providerID, apiKey string) *provider.ValidateResponse {
	s.lastProvider = providerID
	s.lastKey = apiKey
	return s.validate
}

func (s *stubPromptService) Providers() []provider.Info {
	return s.infos
}

func newTestHandlers(scraper *stubScraper, prompts *stubPromptService) *Handlers {
	return NewHandlers(scraper, prompts, slog.Default())
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestScrapeHandler(t *testing.T) {
	meta := models.NewImageMetadata("pexels")
	meta.Title = "Coffee"
	scraper := &stubScraper{result: &engine.Result{Success: true, RequestID: "req-1", Data: meta}}
	h := newTestHandlers(scraper, &stubPromptService{})

	rec := postJSON(t, h.Scrape, map[string]string{"url": "https://www.pexels.com/photo/coffee-854327/"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://www.pexels.com/photo/coffee-854327/", scraper.lastURL)

	var result engine.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "Coffee", result.Data.Title)
}

func TestScrapeHandlerRejectsMissingURL(t *testing.T) {
	h := newTestHandlers(&stubScraper{}, &stubPromptService{})

	rec := postJSON(t, h.Scrape, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "url is required")
}

func TestScrapeHandlerRejectsBadBody(t *testing.T) {
	h := newTestHandlers(&stubScraper{}, &stubPromptService{})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Scrape(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateHandler(t *testing.T) {
	prompts := &stubPromptService{
		generate: &provider.GenerateResponse{Success: true, Prompt: "a prompt", Confidence: 0.9},
	}
	h := newTestHandlers(&stubScraper{}, prompts)

	rec := postJSON(t, h.Generate, map[string]any{
		"provider":     "openai",
		"api_key":      "sk-test",
		"image_base64": "aGVsbG8=",
		"prompt_style": "detailed",
		"metadata":     map[string]any{"title": "Coffee"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "openai", prompts.lastProvider)
	assert.Equal(t, "sk-test", prompts.lastKey)
	require.NotNil(t, prompts.lastRequest)
	assert.Equal(t, "aGVsbG8=", prompts.lastRequest.ImageBase64)
	assert.Equal(t, "Coffee", prompts.lastRequest.Metadata.Title)

	var resp provider.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "a prompt", resp.Prompt)
}

func TestGenerateHandlerRequiresProvider(t *testing.T) {
	h := newTestHandlers(&stubScraper{}, &stubPromptService{})

	rec := postJSON(t, h.Generate, map[string]string{"api_key": "sk-test"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "provider is required")
}

func TestValidateKeyHandler(t *testing.T) {
	prompts := &stubPromptService{
		validate: &provider.ValidateResponse{Success: true, IsValid: false, Error: "invalid API key"},
	}
	h := newTestHandlers(&stubScraper{}, prompts)

	rec := postJSON(t, h.ValidateKey, map[string]string{"provider": "gemini", "api_key": "bad"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gemini", prompts.lastProvider)

	var resp provider.ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.IsValid)
}

func TestListPlatformsHandler(t *testing.T) {
	h := newTestHandlers(&stubScraper{}, &stubPromptService{})

	req := httptest.NewRequest(http.MethodGet, "/api/platforms", nil)
	rec := httptest.NewRecorder()
	h.ListPlatforms(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Platforms []PlatformInfo `json:"platforms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Platforms, 10)

	ids := map[string]bool{}
	for _, p := range resp.Platforms {
		ids[p.ID] = true
	}
	assert.True(t, ids["shutterstock"])
	assert.True(t, ids["dreamstime"])
}

func TestListProvidersHandler(t *testing.T) {
	prompts := &stubPromptService{infos: []provider.Info{
		{ID: "openai", Name: "OpenAI", Model: "gpt-4o"},
	}}
	h := newTestHandlers(&stubScraper{}, prompts)

	req := httptest.NewRequest(http.MethodGet, "/api/providers", nil)
	rec := httptest.NewRecorder()
	h.ListProviders(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gpt-4o")
}

func TestHealthHandler(t *testing.T) {
	h := newTestHandlers(&stubScraper{}, &stubPromptService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
