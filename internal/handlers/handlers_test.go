package handlers

import (
	"context"
	"errors"

	"intervai/server/internal/llm"
	"intervai/server/internal/models"
)

type mockProvider struct {
	chatFn            func(ctx context.Context, messages []models.Message, opts llm.ChatOptions) (*models.GenerationResponse, error)
	getProviderNameFn func() string
}

func (m *mockProvider) Chat(ctx context.Context, messages []models.Message, opts llm.ChatOptions) (*models.GenerationResponse, error) {
	if m.chatFn == nil {
		return &models.GenerationResponse{Content: "mock reply"}, nil
	}
	return m.chatFn(ctx, messages, opts)
}

func (m *mockProvider) GetProviderName() string {
	if m.getProviderNameFn == nil {
		return "mock"
	}
	return m.getProviderNameFn()
}

type mockPromptManager struct {
	composeFn      func(mode, level string) string
	getTemplatesFn func() map[string]map[string]string
}

func (m *mockPromptManager) ComposeSystemPrompt(mode, level string) string {
	if m.composeFn == nil {
		return "mock system prompt"
	}
	return m.composeFn(mode, level)
}

func (m *mockPromptManager) BuildMessages(transcript []models.Message, mode, level string) []models.Message {
	messages := []models.Message{{Role: models.RoleSystem, Content: m.ComposeSystemPrompt(mode, level)}}
	return append(messages, transcript...)
}

func (m *mockPromptManager) GetTemplates() map[string]map[string]string {
	if m.getTemplatesFn == nil {
		return map[string]map[string]string{
			"modes": {"technical": "coding"},
		}
	}
	return m.getTemplatesFn()
}

type mockReplier struct {
	replyFn func(ctx context.Context, transcript []models.Message, mode, level string) (string, error)
}

func (m *mockReplier) Reply(ctx context.Context, transcript []models.Message, mode, level string) (string, error) {
	if m.replyFn == nil {
		return "mock reply", nil
	}
	return m.replyFn(ctx, transcript, mode, level)
}

func (m *mockReplier) ProviderName() string { return "mock" }

type mockRecordStore struct {
	appendFn func(ctx context.Context, record *models.InterviewRecord) error
	listFn   func(ctx context.Context, userID string, limit int) ([]models.InterviewRecord, error)
	pingErr  error
}

func (m *mockRecordStore) Append(ctx context.Context, record *models.InterviewRecord) error {
	if m.appendFn == nil {
		return nil
	}
	return m.appendFn(ctx, record)
}

func (m *mockRecordStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.InterviewRecord, error) {
	if m.listFn == nil {
		return []models.InterviewRecord{}, nil
	}
	return m.listFn(ctx, userID, limit)
}

func (m *mockRecordStore) Ping(context.Context) error {
	return m.pingErr
}

var errUpstream = errors.New("groq error: Chat completion request rejected (status 429: rate limit exceeded)")
