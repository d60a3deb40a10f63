package groq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"intervai/server/internal/llm"
	"intervai/server/internal/models"
)

func newStubClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(&Config{APIKey: "test-key", Model: "test-model", BaseURL: server.URL})
}

var transcript = []models.Message{
	{Role: models.RoleSystem, Content: "be strict"},
	{Role: models.RoleAssistant, Content: "Reverse a linked list."},
	{Role: models.RoleUser, Content: "Three pointers, iterate once."},
}

func TestClientChatSuccess(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		var body chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if body.Model != "test-model" || body.Temperature != 0.7 {
			t.Errorf("unexpected sampling settings: %+v", body)
		}
		if len(body.Messages) != 3 || body.Messages[0].Role != models.RoleSystem {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"llama-served","choices":[{"message":{"role":"assistant","content":"  Correct. Now do it recursively.\n"}},{"message":{"content":"second"}}]}`))
	})

	resp, err := client.Chat(context.Background(), transcript, llm.ChatOptions{Temperature: 0.7})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if resp.Content != "  Correct. Now do it recursively.\n" {
		t.Fatalf("expected first choice verbatim, got %q", resp.Content)
	}
	if resp.Metadata.Model != "llama-served" || resp.Metadata.Provider != "groq" {
		t.Fatalf("unexpected metadata: %+v", resp.Metadata)
	}
}

func TestClientChatMissingAPIKey(t *testing.T) {
	client := NewClient(&Config{Model: "m", BaseURL: "http://127.0.0.1:1"})

	_, err := client.Chat(context.Background(), transcript, llm.ChatOptions{})
	var provErr *llm.ProviderError
	if !errors.As(err, &provErr) || provErr.Code != llm.ErrCodeAPIKey {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestClientChatStatusMapping(t *testing.T) {
	cases := map[int]string{
		http.StatusTooManyRequests:     llm.ErrCodeRateLimit,
		http.StatusUnauthorized:        llm.ErrCodeAPIKey,
		http.StatusInternalServerError: llm.ErrCodeServiceDown,
		http.StatusGatewayTimeout:      llm.ErrCodeTimeout,
	}
	for status, code := range cases {
		status, code := status, code
		client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"upstream said no"}}`))
		})

		_, err := client.Chat(context.Background(), transcript, llm.ChatOptions{})
		var provErr *llm.ProviderError
		if !errors.As(err, &provErr) || provErr.Code != code {
			t.Fatalf("status %d: expected %s, got %v", status, code, err)
		}
		if provErr.Err == nil || provErr.Err.Error() != "status "+strconv.Itoa(status)+": upstream said no" {
			t.Fatalf("status %d: expected origin message, got %v", status, provErr.Err)
		}
	}
}

func TestClientChatMalformedResponse(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Chat(context.Background(), transcript, llm.ChatOptions{})
	var provErr *llm.ProviderError
	if !errors.As(err, &provErr) || provErr.Code != llm.ErrCodeInvalidInput {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestClientChatTimeout(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Chat(ctx, transcript, llm.ChatOptions{})
	var provErr *llm.ProviderError
	if !errors.As(err, &provErr) || provErr.Code != llm.ErrCodeTimeout {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("GROQ_MODEL", "")
	t.Setenv("GROQ_BASE_URL", "")

	cfg := NewConfig()
	if cfg.Model != defaultModel || cfg.BaseURL != defaultBaseURL || cfg.APIKey != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	t.Setenv("GROQ_API_KEY", "k")
	t.Setenv("GROQ_MODEL", "mixtral")
	cfg = NewConfig()
	if cfg.APIKey != "k" || cfg.Model != "mixtral" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}
