package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"intervai/server/internal/llm"
	"intervai/server/internal/models"
)

const providerName = "gemini"

// openingTurn stands in for the empty transcript of the first request,
// since Gemini rejects a request without contents.
const openingTurn = "Begin the interview."

// Client represents a Gemini LLM client
type Client struct {
	client *genai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	return &Client{
		client: client,
		config: config,
	}, nil
}

// Chat sends the conversation to Gemini. System entries become the system
// instruction and assistant turns are sent with the "model" role.
func (c *Client) Chat(ctx context.Context, messages []models.Message, opts llm.ChatOptions) (*models.GenerationResponse, error) {
	startTime := time.Now()

	system, contents := toContents(messages)
	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if system != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.config.Model, contents, genConfig)
	if err != nil {
		code := llm.ErrCodeServiceDown
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			code = llm.ErrCodeTimeout
		case isRateLimitError(err):
			code = llm.ErrCodeRateLimit
		}
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     code,
			Message:  "Failed to generate reply",
			Err:      err,
		}
	}

	if result == nil {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeInvalidInput,
			Message:  "No response generated",
		}
	}

	return &models.GenerationResponse{
		Content: result.Text(),
		Metadata: models.GenerationMetadata{
			ProcessingTime: int(time.Since(startTime).Milliseconds()),
			Provider:       providerName,
			Model:          c.config.Model,
		},
	}, nil
}

func (c *Client) GetProviderName() string {
	return providerName
}

func toContents(messages []models.Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			system = append(system, msg.Content)
		case models.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(contents) == 0 {
		contents = append(contents, genai.NewContentFromText(openingTurn, genai.RoleUser))
	}
	return strings.Join(system, "\n\n"), contents
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "quota")
}
