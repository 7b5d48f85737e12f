package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrompt = "A golden retriever puppy playing in autumn leaves, warm afternoon light, shallow depth of field, shot on a telephoto lens."

func generateRequest() *Request {
	return &Request{
		ImageBase64: "aGVsbG8=",
		PromptStyle: StyleDetailed,
	}
}

func TestOpenAIGenerate(t *testing.T) {
	var calls []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		calls = append(calls, payload)

		content := testPrompt
		if len(calls) > 1 {
			content = "variation one\nvariation two"
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{
					"message":       map[string]string{"content": content},
					"finish_reason": "stop",
				},
			},
		})
	}))
	defer server.Close()

	p := NewOpenAI(server.URL, "", 5*time.Second)
	result, err := p.Generate(context.Background(), "sk-test-key", generateRequest())
	require.NoError(t, err)

	assert.Equal(t, testPrompt, result.Prompt)
	assert.Equal(t, []string{"variation one", "variation two"}, result.Variations)
	assert.InDelta(t, 1.0, result.Confidence, 0.0001)

	// first call carries the image as a data URL
	require.Len(t, calls, 2)
	assert.Equal(t, "gpt-4o", calls[0]["model"])
	encoded, _ := json.Marshal(calls[0])
	assert.Contains(t, string(encoded), "data:image/jpeg;base64,aGVsbG8=")
}

func TestOpenAIGenerateSurvivesVariationFailure(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": testPrompt}, "finish_reason": "stop"},
			},
		})
	}))
	defer server.Close()

	p := NewOpenAI(server.URL, "", 5*time.Second)
	result, err := p.Generate(context.Background(), "sk-test-key", generateRequest())
	require.NoError(t, err)
	assert.Equal(t, testPrompt, result.Prompt)
	assert.Empty(t, result.Variations)
}

func TestOpenAIValidateRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
	}))
	defer server.Close()

	p := NewOpenAI(server.URL, "", 5*time.Second)
	result, err := p.Validate(context.Background(), "sk-test-key")
	require.NoError(t, err)

	// throttling proves the key authenticates
	assert.True(t, result.IsValid)
	assert.Contains(t, result.Details, "rate limit")
}

func TestOpenAIValidateBadKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer server.Close()

	p := NewOpenAI(server.URL, "", 5*time.Second)
	result, err := p.Validate(context.Background(), "sk-bad-key")
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, "invalid API key", result.Error)
}

func TestOpenRouterGenerate(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "Bearer sk-or-test-key", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("HTTP-Referer"))
		assert.NotEmpty(t, r.Header.Get("X-Title"))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": testPrompt}, "finish_reason": "stop"},
			},
		})
	}))
	defer server.Close()

	p := NewOpenRouter(server.URL, "", 5*time.Second)
	result, err := p.Generate(context.Background(), "sk-or-test-key", generateRequest())
	require.NoError(t, err)

	assert.Equal(t, testPrompt, result.Prompt)
	assert.Empty(t, result.Variations)
	assert.Equal(t, 1, calls, "openrouter must not issue a variations follow-up")
}

func TestAnthropicGenerate(t *testing.T) {
	var calls []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-ant-test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "/v1/messages", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		calls = append(calls, payload)

		text := testPrompt
		if len(calls) > 1 {
			text = "variation one\nvariation two"
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content":     []map[string]string{{"type": "text", "text": text}},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	p := NewAnthropic(server.URL, "", 5*time.Second)
	result, err := p.Generate(context.Background(), "sk-ant-test-key", generateRequest())
	require.NoError(t, err)

	assert.Equal(t, testPrompt, result.Prompt)
	assert.Equal(t, []string{"variation one", "variation two"}, result.Variations)
	assert.InDelta(t, 1.0, result.Confidence, 0.0001)

	// image travels as a typed base64 content block
	require.Len(t, calls, 2)
	encoded, _ := json.Marshal(calls[0])
	assert.Contains(t, string(encoded), `"media_type":"image/jpeg"`)
	assert.Contains(t, string(encoded), `"data":"aGVsbG8="`)
}

func TestGeminiGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the key travels as a query parameter, not a header
		assert.Equal(t, "AIza-test-key", r.URL.Query().Get("key"))
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"))
		assert.Empty(t, r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content":      map[string]any{"parts": []map[string]string{{"text": testPrompt}}},
					"finishReason": "STOP",
				},
			},
		})
	}))
	defer server.Close()

	p := NewGemini(server.URL, "", 5*time.Second)
	result, err := p.Generate(context.Background(), "AIza-test-key", generateRequest())
	require.NoError(t, err)

	assert.Equal(t, testPrompt, result.Prompt)
	assert.Empty(t, result.Variations)
	assert.InDelta(t, 1.0, result.Confidence, 0.0001)
}

func TestGeminiGenerateSafetyFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content":      map[string]any{"parts": []map[string]string{{"text": testPrompt}}},
					"finishReason": "SAFETY",
				},
			},
		})
	}))
	defer server.Close()

	p := NewGemini(server.URL, "", 5*time.Second)
	result, err := p.Generate(context.Background(), "AIza-test-key", generateRequest())
	require.NoError(t, err)

	// safety-flagged truncation: 0.5 + 0.2 length - 0.2 flag
	assert.InDelta(t, 0.5, result.Confidence, 0.0001)
}

func TestGeminiGenerateBlockedPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"promptFeedback": map[string]string{"blockReason": "SAFETY"},
		})
	}))
	defer server.Close()

	p := NewGemini(server.URL, "", 5*time.Second)
	_, err := p.Generate(context.Background(), "AIza-test-key", generateRequest())
	assert.ErrorIs(t, err, ErrVendorRequestInvalid)
}

func TestGeminiValidateBadKeyOn400(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`)
	}))
	defer server.Close()

	p := NewGemini(server.URL, "", 5*time.Second)
	result, err := p.Validate(context.Background(), "AIza-bad-key")
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, "invalid API key", result.Error)
}

func TestAdapterIdentity(t *testing.T) {
	tests := []struct {
		provider Provider
		id       string
		model    string
	}{
		{NewOpenAI("", "", time.Second), "openai", "gpt-4o"},
		{NewOpenRouter("", "", time.Second), "openrouter", "qwen/qwen2.5-vl-72b-instruct"},
		{NewAnthropic("", "", time.Second), "anthropic", "claude-sonnet-4-20250514"},
		{NewGemini("", "", time.Second), "gemini", "gemini-2.0-flash"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.id, tt.provider.ID())
			assert.Equal(t, tt.model, tt.provider.Model())
			assert.NotEmpty(t, tt.provider.Name())
		})
	}
}
