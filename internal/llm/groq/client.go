package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"intervai/server/internal/llm"
	"intervai/server/internal/models"
)

const providerName = "groq"

// Client talks to the OpenAI-compatible chat completions endpoint.
type Client struct {
	http   *resty.Client
	config *Config
}

type chatCompletionRequest struct {
	Model       string           `json:"model"`
	Temperature float64          `json:"temperature"`
	Messages    []models.Message `json:"messages"`
}

func NewClient(config *Config) *Client {
	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   httpClient,
		config: config,
	}
}

func (c *Client) Chat(ctx context.Context, messages []models.Message, opts llm.ChatOptions) (*models.GenerationResponse, error) {
	if c.config.APIKey == "" {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeAPIKey,
			Message:  "GROQ_API_KEY is not configured",
		}
	}

	startTime := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.config.APIKey).
		SetBody(chatCompletionRequest{
			Model:       c.config.Model,
			Temperature: opts.Temperature,
			Messages:    messages,
		}).
		Post("/chat/completions")
	if err != nil {
		code := llm.ErrCodeServiceDown
		if errors.Is(err, context.DeadlineExceeded) {
			code = llm.ErrCodeTimeout
		}
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     code,
			Message:  "Failed to reach chat completions endpoint",
			Err:      err,
		}
	}

	if !resp.IsSuccess() {
		return nil, statusError(resp)
	}

	content := gjson.GetBytes(resp.Body(), "choices.0.message.content")
	if !content.Exists() {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Malformed chat completion response",
		}
	}

	model := gjson.GetBytes(resp.Body(), "model").String()
	if model == "" {
		model = c.config.Model
	}

	return &models.GenerationResponse{
		Content: content.String(),
		Metadata: models.GenerationMetadata{
			ProcessingTime: int(time.Since(startTime).Milliseconds()),
			Provider:       providerName,
			Model:          model,
		},
	}, nil
}

func (c *Client) GetProviderName() string {
	return providerName
}

func statusError(resp *resty.Response) error {
	detail := gjson.GetBytes(resp.Body(), "error.message").String()
	if detail == "" {
		detail = http.StatusText(resp.StatusCode())
	}
	cause := fmt.Errorf("status %d: %s", resp.StatusCode(), detail)

	code := llm.ErrCodeServiceDown
	switch resp.StatusCode() {
	case http.StatusTooManyRequests:
		code = llm.ErrCodeRateLimit
	case http.StatusUnauthorized, http.StatusForbidden:
		code = llm.ErrCodeAPIKey
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		code = llm.ErrCodeTimeout
	}
	return &llm.ProviderError{
		Provider: providerName,
		Code:     code,
		Message:  "Chat completion request rejected",
		Err:      cause,
	}
}
