package llm

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/writeit-dev/writeit/internal/domain"
)

// maxErrorBodySize limits how much of an error response body we read.
const maxErrorBodySize = 1 << 20 // 1 MB

// providerError is the provider's error envelope
// ({"error": {"message": ..., "type": ...}}).
type providerError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// TranslateHTTPError maps a completion API error response to a domain error.
// The provider's error envelope supplies the message when present.
//
// Mapping:
//   - 400, 422      -> domain.ErrValidation (rejected payload)
//   - 401, 403      -> domain.ErrForbidden (bad or missing API key)
//   - 404           -> domain.ErrNotFound (unknown model or endpoint)
//   - 429, 5xx      -> domain.ErrUnavailable (throttled or degraded)
func TranslateHTTPError(resp *http.Response) error {
	detail := parseProviderError(resp)
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%s: %w", detail, domain.ErrValidation)

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w", detail, domain.ErrForbidden)

	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", detail, domain.ErrNotFound)

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%s: %w", detail, domain.ErrUnavailable)

	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, detail)
	}
}

// parseProviderError attempts to read the provider's error envelope from the
// response body. Returns "" if parsing fails.
func parseProviderError(resp *http.Response) string {
	if resp.Body == nil {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return ""
	}

	var pe providerError
	if err := json.Unmarshal(body, &pe); err != nil {
		return ""
	}
	return pe.Error.Message
}
