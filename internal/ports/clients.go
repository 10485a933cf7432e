package ports

import "context"

// CompletionRequest is a single model invocation for one pipeline step.
type CompletionRequest struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// CompletionResponse carries the model output and token accounting.
type CompletionResponse struct {
	Text         string
	PromptTokens int
	OutputTokens int
}

// CompletionClient defines the client port for the downstream completion
// API. Implemented by the LLM adapter; called by the pipeline service.
// Errors are translated to domain sentinels (ErrUnavailable for 429/5xx,
// ErrValidation for rejected payloads, ErrForbidden for auth failures).
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
