package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// Gemini implements the Provider contract against the generateContent
// API. The key travels as a URL query parameter rather than a header,
// and images are inline_data parts.
type Gemini struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

func NewGemini(baseURL, model string, timeout time.Duration) *Gemini {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  slog.Default().With("component", "provider", "provider", "gemini"),
	}
}

func (p *Gemini) ID() string    { return "gemini" }
func (p *Gemini) Name() string  { return "Google Gemini" }
func (p *Gemini) Model() string { return p.model }

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason  string `json:"finishReason"`
		SafetyRatings []struct {
			Category string `json:"category"`
			Blocked  bool   `json:"blocked"`
		} `json:"safetyRatings"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (p *Gemini) Generate(ctx context.Context, apiKey string, req *Request) (*Result, error) {
	payload := map[string]any{
		"system_instruction": map[string]any{
			"parts": []map[string]string{
				{"text": systemInstruction(req.PromptStyle, req.TargetPlatform)},
			},
		},
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{"inline_data": map[string]string{
						"mime_type": "image/jpeg",
						"data":      req.ImageBase64,
					}},
					{"text": contextText(req)},
				},
			},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": 600,
			"temperature":     0.7,
		},
	}

	body, err := postJSON(ctx, p.client, p.endpoint(apiKey), nil, payload)
	if err != nil {
		return nil, err
	}

	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrVendorUnknown, err)
	}
	if resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: prompt blocked: %s", ErrVendorRequestInvalid, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrVendorUnknown)
	}

	candidate := resp.Candidates[0]
	var prompt string
	for _, part := range candidate.Content.Parts {
		prompt += part.Text
	}
	if prompt == "" {
		return nil, fmt.Errorf("%w: empty response", ErrVendorUnknown)
	}

	safetyFlagged := candidate.FinishReason == "SAFETY"
	for _, rating := range candidate.SafetyRatings {
		if rating.Blocked {
			safetyFlagged = true
		}
	}

	return &Result{
		Prompt: prompt,
		Confidence: scoreConfidence(responseSignals{
			FinishedCleanly: candidate.FinishReason == "STOP",
			PromptLength:    len(prompt),
			SafetyFlagged:   safetyFlagged,
		}),
	}, nil
}

func (p *Gemini) Validate(ctx context.Context, apiKey string) (*ValidationResult, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": "ping"}}},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": 1,
		},
	}

	if _, err := postJSON(ctx, p.client, p.endpoint(apiKey), nil, payload); err != nil {
		return validationFromError(err)
	}
	return &ValidationResult{IsValid: true, Details: "key authenticated against " + p.model}, nil
}

func (p *Gemini) endpoint(apiKey string) string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		p.baseURL, p.model, url.QueryEscape(apiKey))
}
