// Package llm implements the outbound adapter for the downstream completion
// API. It translates between the completion port's request/response types and
// the provider's chat-completion wire format, and maps HTTP failures to
// domain errors.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/writeit-dev/writeit/internal/platform/httpclient"
	"github.com/writeit-dev/writeit/internal/ports"
)

// completionsPath is the provider's chat completion endpoint.
const completionsPath = "/v1/chat/completions"

// Compile-time interface checks.
var (
	_ ports.CompletionClient = (*Client)(nil)
	_ ports.HealthChecker    = (*Client)(nil)
)

// Client is the outbound adapter for the completion API. The underlying
// [httpclient.Client] provides circuit breaking, retry with exponential
// backoff, rate limiting, and OpenTelemetry tracing for every call.
type Client struct {
	http   *httpclient.Client
	apiKey string
	logger *slog.Logger
}

// New creates a completion client that sends requests through the given
// [httpclient.Client]. The client's BaseURL should point to the provider
// root (e.g. "https://api.openai.com").
func New(http *httpclient.Client, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		http:   http,
		apiKey: apiKey,
		logger: logger,
	}
}

// chatRequest is the provider's chat completion request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the provider's chat completion response body, reduced to
// the fields this adapter consumes.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends one prompt to the provider and returns the model output
// with token accounting. HTTP failures are mapped to domain errors by
// [TranslateHTTPError].
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling completion request: %w", err)
	}

	url := c.http.BaseURL() + completionsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(ctx, httpReq)
	if err != nil {
		// httpclient.Do can return both resp and err when retries are
		// exhausted on a retryable status. Translate the response into a
		// domain error rather than returning the raw retry error.
		if resp != nil {
			defer c.closeBody(ctx, resp)
			return nil, TranslateHTTPError(resp)
		}
		c.logger.ErrorContext(ctx, "completion request failed",
			slog.String("operation", "Complete"),
			slog.String("model", req.Model),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("completion request: %w", err)
	}
	defer c.closeBody(ctx, resp)

	if resp.StatusCode != http.StatusOK {
		translateErr := TranslateHTTPError(resp)
		c.logger.ErrorContext(ctx, "completion request rejected",
			slog.String("operation", "Complete"),
			slog.String("model", req.Model),
			slog.Int("status", resp.StatusCode),
			slog.Any("error", translateErr),
		)
		return nil, translateErr
	}

	var wire chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding completion response: %w", err)
	}
	if len(wire.Choices) == 0 {
		return nil, fmt.Errorf("completion response contains no choices")
	}

	return &ports.CompletionResponse{
		Text:         wire.Choices[0].Message.Content,
		PromptTokens: wire.Usage.PromptTokens,
		OutputTokens: wire.Usage.CompletionTokens,
	}, nil
}

// Name identifies the downstream dependency in health reports.
func (c *Client) Name() string {
	return c.http.Name()
}

// HealthCheck reports availability from the circuit breaker state without
// making a network call.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.http.HealthCheck(ctx)
}

func (c *Client) closeBody(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.logger.WarnContext(ctx, "failed to close response body",
			slog.Any("error", err),
		)
	}
}
