package groq

import (
	"os"
)

const (
	defaultModel   = "llama-3.3-70b-versatile"
	defaultBaseURL = "https://api.groq.com/openai/v1"
)

// holds Groq-specific configuration
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewConfig reads the Groq settings. A missing API key is not fatal here:
// every call then fails with an invalid_api_key provider error.
func NewConfig() *Config {
	model := os.Getenv("GROQ_MODEL")
	if model == "" {
		model = defaultModel
	}
	baseURL := os.Getenv("GROQ_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Config{
		APIKey:  os.Getenv("GROQ_API_KEY"),
		Model:   model,
		BaseURL: baseURL,
	}
}
