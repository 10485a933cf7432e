package httpclient

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/writeit-dev/writeit/internal/platform/config"
)

func testClientConfig(baseURL string) *config.ClientConfig {
	return &config.ClientConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			Multiplier:      2,
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
	}
}

func newClient(t *testing.T, cfg *config.ClientConfig) *Client {
	t.Helper()
	return New(cfg, "test-api", nil, slog.New(slog.DiscardHandler))
}

func TestDo_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, testClientConfig(server.URL))
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	resp, err := client.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if client.BaseURL() != server.URL || client.Name() != "test-api" {
		t.Errorf("accessors = %q/%q, want configured values", client.BaseURL(), client.Name())
	}
}

func TestDo_RetriesRetryableStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("recovered"))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, testClientConfig(server.URL))
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	resp, err := client.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()

	if calls.Load() != 3 {
		t.Errorf("server calls = %d, want 3 (two retries)", calls.Load())
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 after retries", resp.StatusCode)
	}
}

func TestDo_DoesNotRetryClientError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	client := newClient(t, testClientConfig(server.URL))
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	resp, err := client.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()

	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1 (4xx is final)", calls.Load())
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 passed through", resp.StatusCode)
	}
}

func TestDo_ExhaustedRetriesReturnResponseAndError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client := newClient(t, testClientConfig(server.URL))
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	resp, err := client.Do(context.Background(), req)
	if err == nil {
		t.Fatal("Do() error = nil, want retry exhaustion error")
	}
	if resp == nil {
		t.Fatal("Do() resp = nil, want final response for caller inspection")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
}

func TestDo_ReplaysRequestBodyOnRetry(t *testing.T) {
	t.Parallel()

	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if len(bodies) < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, testClientConfig(server.URL))
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL, strings.NewReader(`{"prompt":"x"}`))
	resp, err := client.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()

	if len(bodies) != 2 || bodies[0] != bodies[1] || bodies[0] != `{"prompt":"x"}` {
		t.Errorf("bodies = %q, want identical replayed body", bodies)
	}
}

func TestDo_InjectsContextHeaders(t *testing.T) {
	t.Parallel()

	var reqID, corrID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID = r.Header.Get("X-Request-ID")
		corrID = r.Header.Get("X-Correlation-ID")
	}))
	t.Cleanup(server.Close)

	client := newClient(t, testClientConfig(server.URL))

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithCorrelationID(ctx, "corr-456")
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	resp, err := client.Do(ctx, req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()

	if reqID != "req-123" || corrID != "corr-456" {
		t.Errorf("propagated headers = %q/%q, want req-123/corr-456", reqID, corrID)
	}
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	cfg := testClientConfig(server.URL)
	cfg.Retry.MaxAttempts = 1
	client := newClient(t, cfg)

	for range cfg.CircuitBreaker.MaxFailures {
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		if resp, err := client.Do(context.Background(), req); err == nil {
			resp.Body.Close()
			t.Fatal("Do() error = nil, want failure")
		} else if resp != nil {
			resp.Body.Close()
		}
	}

	if state := client.BreakerState(); state != gobreaker.StateOpen {
		t.Fatalf("breaker state = %v, want open", state)
	}
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() = nil, want open-breaker error")
	}

	// Requests are rejected without reaching the server.
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	if _, err := client.Do(context.Background(), req); err == nil {
		t.Error("Do() with open breaker = nil error, want rejection")
	}
}

func TestHealthCheckClosedBreaker(t *testing.T) {
	t.Parallel()

	client := newClient(t, testClientConfig("http://localhost:0"))
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v, want nil for closed breaker", err)
	}
}

func TestRateLimiterConfigured(t *testing.T) {
	t.Parallel()

	cfg := testClientConfig("http://localhost:0")
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 10, BurstSize: 1}
	client := newClient(t, cfg)
	if client.limiter == nil {
		t.Error("limiter = nil, want configured rate limiter")
	}

	cfg.RateLimit.RequestsPerSecond = 0
	client = newClient(t, cfg)
	if client.limiter != nil {
		t.Error("limiter != nil, want disabled rate limiter")
	}
}
