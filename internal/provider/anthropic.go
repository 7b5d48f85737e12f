package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
)

// Anthropic implements the Provider contract against the messages API,
// which carries images as typed content blocks with a base64 source.
type Anthropic struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

func NewAnthropic(baseURL, model string, timeout time.Duration) *Anthropic {
	if baseURL == "" {
		baseURL = DefaultAnthropicBaseURL
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &Anthropic{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  slog.Default().With("component", "provider", "provider", "anthropic"),
	}
}

func (p *Anthropic) ID() string    { return "anthropic" }
func (p *Anthropic) Name() string  { return "Anthropic" }
func (p *Anthropic) Model() string { return p.model }

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (r *anthropicResponse) text() string {
	for _, block := range r.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}

func (p *Anthropic) Generate(ctx context.Context, apiKey string, req *Request) (*Result, error) {
	payload := map[string]any{
		"model":      p.model,
		"max_tokens": 600,
		"system":     systemInstruction(req.PromptStyle, req.TargetPlatform),
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type": "image",
						"source": map[string]string{
							"type":       "base64",
							"media_type": "image/jpeg",
							"data":       req.ImageBase64,
						},
					},
					{"type": "text", "text": contextText(req)},
				},
			},
		},
	}

	body, err := postJSON(ctx, p.client, p.baseURL+"/v1/messages", p.headers(apiKey), payload)
	if err != nil {
		return nil, err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrVendorUnknown, err)
	}
	prompt := resp.text()
	if prompt == "" {
		return nil, fmt.Errorf("%w: empty response", ErrVendorUnknown)
	}

	result := &Result{
		Prompt: prompt,
		Confidence: scoreConfidence(responseSignals{
			FinishedCleanly: resp.StopReason == "end_turn",
			PromptLength:    len(prompt),
			SafetyFlagged:   resp.StopReason == "refusal",
		}),
	}

	if variations, err := p.generateVariations(ctx, apiKey, prompt); err != nil {
		p.logger.Warn("variation call failed", "error", err)
	} else {
		result.Variations = variations
	}

	return result, nil
}

func (p *Anthropic) generateVariations(ctx context.Context, apiKey, prompt string) ([]string, error) {
	payload := map[string]any{
		"model":      p.model,
		"max_tokens": 400,
		"messages": []map[string]any{
			{"role": "user", "content": variationInstruction(prompt)},
		},
	}

	body, err := postJSON(ctx, p.client, p.baseURL+"/v1/messages", p.headers(apiKey), payload)
	if err != nil {
		return nil, err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrVendorUnknown, err)
	}
	return parseVariations(resp.text()), nil
}

func (p *Anthropic) Validate(ctx context.Context, apiKey string) (*ValidationResult, error) {
	payload := map[string]any{
		"model":      p.model,
		"max_tokens": 1,
		"messages": []map[string]any{
			{"role": "user", "content": "ping"},
		},
	}

	if _, err := postJSON(ctx, p.client, p.baseURL+"/v1/messages", p.headers(apiKey), payload); err != nil {
		return validationFromError(err)
	}
	return &ValidationResult{IsValid: true, Details: "key authenticated against " + p.model}, nil
}

func (p *Anthropic) headers(apiKey string) map[string]string {
	return map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": anthropicVersion,
	}
}
