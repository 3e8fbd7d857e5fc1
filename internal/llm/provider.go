package llm

import "context"

// GenerationResult is the raw text output of one model call plus call
// metadata. Structured parsing happens at the caller's boundary.
type GenerationResult struct {
	Content  string
	Metadata Metadata
}

// Metadata describes how a generation was produced.
type Metadata struct {
	ProcessingTimeMs int
	Provider         string
	Model            string
}

// defines the interface for LLM providers
type Provider interface {
	GenerateContent(ctx context.Context, prompt string, requestID string) (*GenerationResult, error)
	GetProviderName() string
}

// represents an error from an LLM provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

// Common error codes
// For current and future use across different providers
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
)
