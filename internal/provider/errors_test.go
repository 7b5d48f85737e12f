package provider

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyVendorStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected error
	}{
		{
			name:     "Unauthorized",
			status:   http.StatusUnauthorized,
			body:     `{"error":{"message":"Incorrect API key provided"}}`,
			expected: ErrVendorAuth,
		},
		{
			name:     "Forbidden",
			status:   http.StatusForbidden,
			body:     "",
			expected: ErrVendorAuth,
		},
		{
			name:     "Rate limited",
			status:   http.StatusTooManyRequests,
			body:     `{"error":{"message":"Rate limit reached"}}`,
			expected: ErrVendorRateLimited,
		},
		{
			name:     "Payment required",
			status:   http.StatusPaymentRequired,
			body:     "",
			expected: ErrVendorQuotaExceeded,
		},
		{
			name:     "Plain bad request",
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"messages: at least one message is required"}}`,
			expected: ErrVendorRequestInvalid,
		},
		{
			name:     "Gemini-style bad key on 400",
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`,
			expected: ErrVendorAuth,
		},
		{
			name:     "Quota mentioned on 400",
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"You exceeded your current quota"}}`,
			expected: ErrVendorQuotaExceeded,
		},
		{
			name:     "Quota mentioned on 500",
			status:   http.StatusInternalServerError,
			body:     `{"error":"billing hard limit reached"}`,
			expected: ErrVendorQuotaExceeded,
		},
		{
			name:     "Unknown server error",
			status:   http.StatusBadGateway,
			body:     "upstream timeout",
			expected: ErrVendorUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyVendorStatus(tt.status, tt.body)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestClassifyVendorStatusIncludesDetail(t *testing.T) {
	err := classifyVendorStatus(http.StatusTooManyRequests, "Rate limit reached for gpt-4o")
	assert.Contains(t, err.Error(), "rate limit")
	assert.Contains(t, err.Error(), "Rate limit reached for gpt-4o")
}

func TestValidationFromError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedValid   bool
		expectedMessage string
	}{
		{
			name:            "Auth failure means bad key",
			err:             classifyVendorStatus(http.StatusUnauthorized, ""),
			expectedValid:   false,
			expectedMessage: "invalid API key",
		},
		{
			name:            "Quota exceeded still proves the key",
			err:             classifyVendorStatus(http.StatusPaymentRequired, ""),
			expectedValid:   true,
			expectedMessage: "quota exceeded",
		},
		{
			name:            "Rate limit still proves the key",
			err:             classifyVendorStatus(http.StatusTooManyRequests, ""),
			expectedValid:   true,
			expectedMessage: "rate limited",
		},
		{
			name:            "Rejected request",
			err:             classifyVendorStatus(http.StatusUnprocessableEntity, "bad schema"),
			expectedValid:   false,
			expectedMessage: "request rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validationFromError(tt.err)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedValid, result.IsValid)
			assert.Equal(t, tt.expectedMessage, result.Error)
		})
	}
}

func TestValidationFromErrorPropagatesTransportFailures(t *testing.T) {
	transport := errors.New("dial tcp: connection refused")
	_, err := validationFromError(transport)
	assert.Equal(t, transport, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 300))
	long := make([]byte, 400)
	for i := range long {
		long[i] = 'a'
	}
	got := truncate(string(long), 300)
	assert.Len(t, got, 303)
	assert.Contains(t, got, "...")
}
