package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAI implements the Provider contract against the chat-completions
// API with inline data-URL image content.
type OpenAI struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

func NewOpenAI(baseURL, model string, timeout time.Duration) *OpenAI {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAI{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  slog.Default().With("component", "provider", "provider", "openai"),
	}
}

func (p *OpenAI) ID() string    { return "openai" }
func (p *OpenAI) Name() string  { return "OpenAI" }
func (p *OpenAI) Model() string { return p.model }

// chatMessage covers both plain-text and multi-part content.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (p *OpenAI) Generate(ctx context.Context, apiKey string, req *Request) (*Result, error) {
	payload := map[string]any{
		"model": p.model,
		"messages": []chatMessage{
			{Role: "system", Content: systemInstruction(req.PromptStyle, req.TargetPlatform)},
			{Role: "user", Content: []map[string]any{
				{"type": "text", "text": contextText(req)},
				{"type": "image_url", "image_url": map[string]string{
					"url": "data:image/jpeg;base64," + req.ImageBase64,
				}},
			}},
		},
		"max_tokens":  600,
		"temperature": 0.7,
	}

	body, err := postJSON(ctx, p.client, p.baseURL+"/chat/completions", p.headers(apiKey), payload)
	if err != nil {
		return nil, err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrVendorUnknown, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrVendorUnknown)
	}

	choice := resp.Choices[0]
	result := &Result{
		Prompt: choice.Message.Content,
		Confidence: scoreConfidence(responseSignals{
			FinishedCleanly: choice.FinishReason == "stop",
			PromptLength:    len(choice.Message.Content),
			SafetyFlagged:   choice.FinishReason == "content_filter",
		}),
	}

	// Variations ride on a cheap follow-up call; losing them is not worth
	// failing a generation that already succeeded.
	if variations, err := p.generateVariations(ctx, apiKey, result.Prompt); err != nil {
		p.logger.Warn("variation call failed", "error", err)
	} else {
		result.Variations = variations
	}

	return result, nil
}

func (p *OpenAI) generateVariations(ctx context.Context, apiKey, prompt string) ([]string, error) {
	payload := map[string]any{
		"model": p.model,
		"messages": []chatMessage{
			{Role: "user", Content: variationInstruction(prompt)},
		},
		"max_tokens":  400,
		"temperature": 0.9,
	}

	body, err := postJSON(ctx, p.client, p.baseURL+"/chat/completions", p.headers(apiKey), payload)
	if err != nil {
		return nil, err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrVendorUnknown, err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}
	return parseVariations(resp.Choices[0].Message.Content), nil
}

func (p *OpenAI) Validate(ctx context.Context, apiKey string) (*ValidationResult, error) {
	payload := map[string]any{
		"model": p.model,
		"messages": []chatMessage{
			{Role: "user", Content: "ping"},
		},
		"max_tokens": 1,
	}

	if _, err := postJSON(ctx, p.client, p.baseURL+"/chat/completions", p.headers(apiKey), payload); err != nil {
		return validationFromError(err)
	}
	return &ValidationResult{IsValid: true, Details: "key authenticated against " + p.model}, nil
}

func (p *OpenAI) headers(apiKey string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + apiKey}
}
