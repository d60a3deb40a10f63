package relay

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"intervai/server/internal/llm"
	"intervai/server/internal/metrics"
	"intervai/server/internal/models"
	"intervai/server/internal/prompts"
)

const (
	DefaultTemperature = 0.7
	DefaultTimeout     = 30 * time.Second
)

// Error is the single failure kind surfaced to callers of Reply. Its message
// is the origin error's message.
type Error struct {
	Cause error
}

func (e *Error) Error() string {
	return e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Relay composes the interviewer instruction and forwards the transcript to
// the configured provider.
type Relay struct {
	provider    llm.Provider
	composer    prompts.PromptProvider
	temperature float64
	timeout     time.Duration
	logger      *zap.Logger
}

type Option func(*Relay)

func WithTemperature(temperature float64) Option {
	return func(r *Relay) { r.temperature = temperature }
}

// WithTimeout bounds the wait for the upstream reply.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Relay) { r.timeout = timeout }
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Relay) { r.logger = logger }
}

func New(provider llm.Provider, composer prompts.PromptProvider, opts ...Option) *Relay {
	r := &Relay{
		provider:    provider,
		composer:    composer,
		temperature: DefaultTemperature,
		timeout:     DefaultTimeout,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reply returns the text of the model's first completion, unmodified.
func (r *Relay) Reply(ctx context.Context, transcript []models.Message, mode, level string) (string, error) {
	messages := r.composer.BuildMessages(transcript, mode, level)

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := r.provider.Chat(callCtx, messages, llm.ChatOptions{Temperature: r.temperature})
	elapsed := time.Since(start)
	if err == nil && resp == nil {
		err = errors.New("provider returned no completion")
	}
	if err != nil {
		metrics.ObserveUpstream(r.provider.GetProviderName(), outcome(err), elapsed)
		r.logger.Error("chat completion failed",
			zap.Error(err),
			zap.String("provider", r.provider.GetProviderName()),
			zap.String("mode", mode),
			zap.String("level", level),
			zap.Int("turns", len(transcript)))
		return "", &Error{Cause: err}
	}

	metrics.ObserveUpstream(r.provider.GetProviderName(), "ok", elapsed)
	r.logger.Debug("chat completion",
		zap.String("provider", resp.Metadata.Provider),
		zap.String("model", resp.Metadata.Model),
		zap.Int("processing_time_ms", resp.Metadata.ProcessingTime))
	return resp.Content, nil
}

// Send lets an in-process session controller use the relay directly.
func (r *Relay) Send(ctx context.Context, req models.ChatRequest) (string, error) {
	return r.Reply(ctx, req.Messages, req.Mode, req.Level)
}

// ProviderName reports the upstream in use.
func (r *Relay) ProviderName() string {
	return r.provider.GetProviderName()
}

func outcome(err error) string {
	var provErr *llm.ProviderError
	if errors.As(err, &provErr) && provErr.Code != "" {
		return provErr.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return llm.ErrCodeTimeout
	}
	return "error"
}
