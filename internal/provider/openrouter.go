package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouter speaks the same chat-completions shape as OpenAI but with
// its own attribution headers. It does not get a variations follow-up
// call; routed models make the second call too unpredictable in cost.
type OpenRouter struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

func NewOpenRouter(baseURL, model string, timeout time.Duration) *OpenRouter {
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}
	if model == "" {
		model = "qwen/qwen2.5-vl-72b-instruct"
	}
	return &OpenRouter{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  slog.Default().With("component", "provider", "provider", "openrouter"),
	}
}

func (p *OpenRouter) ID() string    { return "openrouter" }
func (p *OpenRouter) Name() string  { return "OpenRouter" }
func (p *OpenRouter) Model() string { return p.model }

func (p *OpenRouter) Generate(ctx context.Context, apiKey string, req *Request) (*Result, error) {
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
	return &Result{
		Prompt: choice.Message.Content,
		Confidence: scoreConfidence(responseSignals{
			FinishedCleanly: choice.FinishReason == "stop",
			PromptLength:    len(choice.Message.Content),
			SafetyFlagged:   choice.FinishReason == "content_filter",
		}),
	}, nil
}

func (p *OpenRouter) Validate(ctx context.Context, apiKey string) (*ValidationResult, error) {
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

func (p *OpenRouter) headers(apiKey string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + apiKey,
		"HTTP-Referer":  "https://stocklens.dev",
		"X-Title":       "StockLens",
	}
}
