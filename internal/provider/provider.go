// Package provider adapts the prompt-generation pipeline onto the four
// supported vision-capable LLM vendors and normalizes their request,
// response and error shapes into one common contract.
package provider

import (
	"context"

	"github.com/stocklens/stocklens/internal/models"
)

// Request is the normalized analysis request handed to every adapter.
type Request struct {
	ImageBase64    string               `json:"image_base64"`
	Metadata       models.ImageMetadata `json:"metadata"`
	PromptStyle    string               `json:"prompt_style"`
	TargetPlatform string               `json:"target_platform,omitempty"`
}

// Result is a successful generation, before the manager wraps it with
// timing information.
type Result struct {
	Prompt     string   `json:"prompt"`
	Variations []string `json:"variations,omitempty"`
	Confidence float64  `json:"confidence"`
}

// ValidationResult reports whether an API key authenticates against the
// vendor, with the vendor-specific detail mapped to the common taxonomy.
type ValidationResult struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// Provider is implemented once per vendor. Implementations are stateless
// and safe for concurrent use; the API key travels with each call.
type Provider interface {
	ID() string
	Name() string
	Model() string
	Generate(ctx context.Context, apiKey string, req *Request) (*Result, error)
	Validate(ctx context.Context, apiKey string) (*ValidationResult, error)
}

// Info describes a registered provider for the listing endpoint.
type Info struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Model string `json:"model"`
}
