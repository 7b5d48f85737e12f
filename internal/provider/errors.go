package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error taxonomy shared by all adapters. Vendor-specific status codes and
// error payloads are mapped onto these before anything leaves the package.
var (
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrMissingCredential   = errors.New("API key is required")
	ErrMissingImageData    = errors.New("image data is required")
	ErrInvalidKeyFormat    = errors.New("API key format is invalid")
	ErrInvalidStyle        = errors.New("unknown prompt style")
	ErrInvalidTarget       = errors.New("unknown target platform")

	ErrVendorAuth           = errors.New("vendor rejected the API key")
	ErrVendorQuotaExceeded  = errors.New("vendor quota exceeded")
	ErrVendorRateLimited    = errors.New("vendor rate limit exceeded")
	ErrVendorRequestInvalid = errors.New("vendor rejected the request")
	ErrVendorUnknown        = errors.New("vendor request failed")
)

// classifyVendorStatus maps a non-2xx vendor response onto the taxonomy.
// The body is included truncated so operators can see the vendor detail.
func classifyVendorStatus(status int, body string) error {
	detail := truncate(body, 300)

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w (status %d): %s", ErrVendorAuth, status, detail)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w (status %d): %s", ErrVendorRateLimited, status, detail)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w (status %d): %s", ErrVendorQuotaExceeded, status, detail)
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		// Gemini reports bad keys as 400 "API key not valid" instead of 401.
		if mentionsBadKey(body) {
			return fmt.Errorf("%w (status %d): %s", ErrVendorAuth, status, detail)
		}
		if mentionsQuota(body) {
			return fmt.Errorf("%w (status %d): %s", ErrVendorQuotaExceeded, status, detail)
		}
		return fmt.Errorf("%w (status %d): %s", ErrVendorRequestInvalid, status, detail)
	default:
		if mentionsQuota(body) {
			return fmt.Errorf("%w (status %d): %s", ErrVendorQuotaExceeded, status, detail)
		}
		return fmt.Errorf("%w: unexpected status %d: %s", ErrVendorUnknown, status, detail)
	}
}

// validationFromError turns a classified vendor error into a validation
// outcome. Auth failures mean the key is bad; quota and rate-limit
// responses prove the key authenticates even though calls are throttled.
// Transport-level failures propagate so the caller can distinguish "key is
// invalid" from "vendor unreachable".
func validationFromError(err error) (*ValidationResult, error) {
	switch {
	case errors.Is(err, ErrVendorAuth):
		return &ValidationResult{IsValid: false, Error: "invalid API key", Details: err.Error()}, nil
	case errors.Is(err, ErrVendorQuotaExceeded):
		return &ValidationResult{IsValid: true, Error: "quota exceeded", Details: err.Error()}, nil
	case errors.Is(err, ErrVendorRateLimited):
		return &ValidationResult{IsValid: true, Error: "rate limited", Details: err.Error()}, nil
	case errors.Is(err, ErrVendorRequestInvalid):
		return &ValidationResult{IsValid: false, Error: "request rejected", Details: err.Error()}, nil
	default:
		return nil, err
	}
}

func mentionsBadKey(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "api key not valid") ||
		strings.Contains(lower, "invalid api key") ||
		strings.Contains(lower, "api_key_invalid")
}

func mentionsQuota(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "quota") ||
		strings.Contains(lower, "billing") ||
		strings.Contains(lower, "insufficient credit")
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
