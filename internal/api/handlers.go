package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/stocklens/stocklens/internal/engine"
	"github.com/stocklens/stocklens/internal/models"
	"github.com/stocklens/stocklens/internal/platform"
	"github.com/stocklens/stocklens/internal/provider"
)

// Scraper extracts listing metadata for a URL.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string) *engine.Result
}

// PromptService dispatches generation and key validation to vendor adapters.
type PromptService interface {
	GeneratePrompt(ctx context.Context, providerID, apiKey string, req *provider.Request) *provider.GenerateResponse
	ValidateAPIKey(ctx context.Context, providerID, apiKey string) *provider.ValidateResponse
	Providers() []provider.Info
}

type Handlers struct {
	scraper Scraper
	prompts PromptService
	logger  *slog.Logger
}

func NewHandlers(scraper Scraper, prompts PromptService, logger *slog.Logger) *Handlers {
	return &Handlers{
		scraper: scraper,
		prompts: prompts,
		logger:  logger,
	}
}

// ScrapeRequest represents a listing scrape request
type ScrapeRequest struct {
	URL string `json:"url"`
}

// Scrape handles listing metadata extraction requests
func (h *Handlers) Scrape(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	result := h.scraper.Scrape(r.Context(), req.URL)
	h.respondJSON(w, http.StatusOK, result)
}

// GenerateRequest represents a prompt generation request
type GenerateRequest struct {
	Provider       string               `json:"provider"`
	APIKey         string               `json:"api_key"`
	ImageBase64    string               `json:"image_base64"`
	Metadata       models.ImageMetadata `json:"metadata"`
	PromptStyle    string               `json:"prompt_style"`
	TargetPlatform string               `json:"target_platform"`
}

// Generate handles prompt generation requests
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Provider == "" {
		h.respondError(w, http.StatusBadRequest, "provider is required")
		return
	}

	result := h.prompts.GeneratePrompt(r.Context(), req.Provider, req.APIKey, &provider.Request{
		ImageBase64:    req.ImageBase64,
		Metadata:       req.Metadata,
		PromptStyle:    req.PromptStyle,
		TargetPlatform: req.TargetPlatform,
	})
	h.respondJSON(w, http.StatusOK, result)
}

// ValidateKeyRequest represents an API key validation request
type ValidateKeyRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
}

// ValidateKey handles API key validation requests
func (h *Handlers) ValidateKey(w http.ResponseWriter, r *http.Request) {
	var req ValidateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Provider == "" {
		h.respondError(w, http.StatusBadRequest, "provider is required")
		return
	}

	result := h.prompts.ValidateAPIKey(r.Context(), req.Provider, req.APIKey)
	h.respondJSON(w, http.StatusOK, result)
}

// PlatformInfo describes one supported stock platform
type PlatformInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Domain     string `json:"domain"`
	RequiresJS bool   `json:"requires_js"`
}

// ListPlatforms handles supported platform discovery
func (h *Handlers) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	all := platform.All()
	out := make([]PlatformInfo, len(all))
	for i, p := range all {
		out[i] = PlatformInfo{
			ID:         p.ID,
			Name:       p.Name,
			Domain:     p.Domain,
			RequiresJS: p.RequiresJS,
		}
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"platforms": out})
}

// ListProviders handles AI provider discovery
func (h *Handlers) ListProviders(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"providers": h.prompts.Providers()})
}

// Health handles liveness checks
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
