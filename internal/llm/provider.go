package llm

import (
	"context"

	"intervai/server/internal/models"
)

// defines the interface for LLM providers
type Provider interface {
	Chat(ctx context.Context, messages []models.Message, opts ChatOptions) (*models.GenerationResponse, error)
	GetProviderName() string
}

// sampling settings applied to a single completion
type ChatOptions struct {
	Temperature float64
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

func (e *ProviderError) Unwrap() error {
	return e.Err
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
