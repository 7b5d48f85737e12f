package provider

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"time"
)

// keyPatterns are cheap per-vendor shape checks applied before a
// validation call spends network traffic. A key that fails its pattern
// never reaches the vendor.
var keyPatterns = map[string]*regexp.Regexp{
	"openai":     regexp.MustCompile(`^sk-[A-Za-z0-9_-]{20,}$`),
	"openrouter": regexp.MustCompile(`^sk-or-[A-Za-z0-9_-]{20,}$`),
	"anthropic":  regexp.MustCompile(`^sk-ant-[A-Za-z0-9_-]{20,}$`),
	"gemini":     regexp.MustCompile(`^AIza[A-Za-z0-9_-]{30,}$`),
}

// GenerateResponse is the uniform envelope returned to the HTTP layer for
// prompt generation, success or failure.
type GenerateResponse struct {
	Success        bool     `json:"success"`
	Prompt         string   `json:"prompt,omitempty"`
	Variations     []string `json:"variations,omitempty"`
	Confidence     float64  `json:"confidence,omitempty"`
	ProcessingTime int64    `json:"processing_time_ms"`
	Error          string   `json:"error,omitempty"`
}

// ValidateResponse is the uniform envelope for key validation.
type ValidateResponse struct {
	Success        bool   `json:"success"`
	IsValid        bool   `json:"is_valid"`
	Error          string `json:"error,omitempty"`
	Details        string `json:"details,omitempty"`
	ProcessingTime int64  `json:"processing_time_ms"`
}

// Manager owns the static provider registry. The registry is fixed at
// construction; unknown provider ids are rejected immediately.
type Manager struct {
	providers       map[string]Provider
	order           []string
	validateTimeout time.Duration
	logger          *slog.Logger
}

func NewManager(validateTimeout time.Duration, providers ...Provider) *Manager {
	if validateTimeout <= 0 {
		validateTimeout = 15 * time.Second
	}
	m := &Manager{
		providers:       make(map[string]Provider, len(providers)),
		validateTimeout: validateTimeout,
		logger:          slog.Default().With("component", "provider_manager"),
	}
	for _, p := range providers {
		if _, exists := m.providers[p.ID()]; exists {
			continue
		}
		m.providers[p.ID()] = p
		m.order = append(m.order, p.ID())
	}
	sort.Strings(m.order)
	return m
}

// Providers lists the registered adapters for the discovery endpoint.
func (m *Manager) Providers() []Info {
	out := make([]Info, 0, len(m.order))
	for _, id := range m.order {
		p := m.providers[id]
		out = append(out, Info{ID: p.ID(), Name: p.Name(), Model: p.Model()})
	}
	return out
}

// GeneratePrompt validates inputs, delegates to the matching adapter and
// wraps both outcomes with elapsed time. Input rejection happens before
// any network traffic.
func (m *Manager) GeneratePrompt(ctx context.Context, providerID, apiKey string, req *Request) *GenerateResponse {
	start := time.Now()
	fail := func(err error) *GenerateResponse {
		return &GenerateResponse{
			Success:        false,
			Error:          err.Error(),
			ProcessingTime: time.Since(start).Milliseconds(),
		}
	}

	p, ok := m.providers[providerID]
	if !ok {
		return fail(fmt.Errorf("%w: %q (known: %v)", ErrUnsupportedProvider, providerID, m.order))
	}
	if apiKey == "" {
		return fail(ErrMissingCredential)
	}
	if req == nil || req.ImageBase64 == "" {
		return fail(ErrMissingImageData)
	}
	if !ValidStyle(req.PromptStyle) {
		return fail(fmt.Errorf("%w: %q", ErrInvalidStyle, req.PromptStyle))
	}
	if !ValidTarget(req.TargetPlatform) {
		return fail(fmt.Errorf("%w: %q", ErrInvalidTarget, req.TargetPlatform))
	}

	m.logger.Info("generating prompt",
		"provider", providerID,
		"style", req.PromptStyle,
		"target", req.TargetPlatform,
		"platform", req.Metadata.Platform)

	result, err := p.Generate(ctx, apiKey, req)
	if err != nil {
		m.logger.Error("generation failed", "provider", providerID, "error", err)
		return fail(err)
	}

	return &GenerateResponse{
		Success:        true,
		Prompt:         result.Prompt,
		Variations:     result.Variations,
		Confidence:     result.Confidence,
		ProcessingTime: time.Since(start).Milliseconds(),
	}
}

// ValidateAPIKey checks the key's vendor-specific shape locally, then
// issues a minimal authenticated call. A malformed key never reaches the
// network.
func (m *Manager) ValidateAPIKey(ctx context.Context, providerID, apiKey string) *ValidateResponse {
	start := time.Now()
	fail := func(err error) *ValidateResponse {
		return &ValidateResponse{
			Success:        false,
			IsValid:        false,
			Error:          err.Error(),
			ProcessingTime: time.Since(start).Milliseconds(),
		}
	}

	p, ok := m.providers[providerID]
	if !ok {
		return fail(fmt.Errorf("%w: %q (known: %v)", ErrUnsupportedProvider, providerID, m.order))
	}
	if apiKey == "" {
		return fail(ErrMissingCredential)
	}

	if pattern, ok := keyPatterns[providerID]; ok && !pattern.MatchString(apiKey) {
		return &ValidateResponse{
			Success:        true,
			IsValid:        false,
			Error:          ErrInvalidKeyFormat.Error(),
			Details:        fmt.Sprintf("%s keys must match %s", p.Name(), pattern.String()),
			ProcessingTime: time.Since(start).Milliseconds(),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, m.validateTimeout)
	defer cancel()

	result, err := p.Validate(ctx, apiKey)
	if err != nil {
		m.logger.Error("key validation failed", "provider", providerID, "error", err)
		return fail(err)
	}

	return &ValidateResponse{
		Success:        true,
		IsValid:        result.IsValid,
		Error:          result.Error,
		Details:        result.Details,
		ProcessingTime: time.Since(start).Milliseconds(),
	}
}
