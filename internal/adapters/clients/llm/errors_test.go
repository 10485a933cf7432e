package llm

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/writeit-dev/writeit/internal/domain"
)

func errResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestTranslateHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "bad request maps to validation",
			status:  http.StatusBadRequest,
			body:    `{"error":{"message":"max_tokens must be positive","type":"invalid_request_error"}}`,
			wantErr: domain.ErrValidation,
			wantMsg: "max_tokens must be positive",
		},
		{
			name:    "unprocessable entity maps to validation",
			status:  http.StatusUnprocessableEntity,
			body:    `{"error":{"message":"prompt too long"}}`,
			wantErr: domain.ErrValidation,
			wantMsg: "prompt too long",
		},
		{
			name:    "unauthorized maps to forbidden",
			status:  http.StatusUnauthorized,
			body:    `{"error":{"message":"invalid api key","type":"authentication_error"}}`,
			wantErr: domain.ErrForbidden,
			wantMsg: "invalid api key",
		},
		{
			name:    "forbidden maps to forbidden",
			status:  http.StatusForbidden,
			body:    "",
			wantErr: domain.ErrForbidden,
			wantMsg: http.StatusText(http.StatusForbidden),
		},
		{
			name:    "not found maps to not found",
			status:  http.StatusNotFound,
			body:    `{"error":{"message":"model gpt-x does not exist"}}`,
			wantErr: domain.ErrNotFound,
			wantMsg: "model gpt-x does not exist",
		},
		{
			name:    "too many requests maps to unavailable",
			status:  http.StatusTooManyRequests,
			body:    `{"error":{"message":"rate limit reached"}}`,
			wantErr: domain.ErrUnavailable,
			wantMsg: "rate limit reached",
		},
		{
			name:    "server error maps to unavailable",
			status:  http.StatusInternalServerError,
			body:    "",
			wantErr: domain.ErrUnavailable,
			wantMsg: http.StatusText(http.StatusInternalServerError),
		},
		{
			name:    "bad gateway maps to unavailable",
			status:  http.StatusBadGateway,
			body:    "not json at all",
			wantErr: domain.ErrUnavailable,
			wantMsg: http.StatusText(http.StatusBadGateway),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := TranslateHTTPError(errResponse(tt.status, tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("TranslateHTTPError(%d) = %v, want %v", tt.status, err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("TranslateHTTPError(%d) message = %q, want it to contain %q", tt.status, err, tt.wantMsg)
			}
		})
	}

	t.Run("unexpected status is not wrapped", func(t *testing.T) {
		t.Parallel()

		err := TranslateHTTPError(errResponse(http.StatusTeapot, ""))
		if err == nil {
			t.Fatal("TranslateHTTPError(418) = nil, want error")
		}
		for _, sentinel := range []error{domain.ErrValidation, domain.ErrForbidden, domain.ErrNotFound, domain.ErrUnavailable} {
			if errors.Is(err, sentinel) {
				t.Errorf("TranslateHTTPError(418) wraps %v, want plain error", sentinel)
			}
		}
	})
}
