package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"intervai/server/internal/models"
)

const (
	chatPath    = "/api/interview/chat"
	recordsPath = "/api/interview/records"
)

// StatusError is a non-2xx answer from the interview API. Message is the
// server's error text.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("interview api returned %d: %s", e.Status, e.Message)
}

// HTTPClient is a Client and Recorder backed by the interview HTTP API.
type HTTPClient struct {
	http *resty.Client
}

type ClientOption func(*resty.Client)

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) ClientOption {
	return func(c *resty.Client) { c.SetAuthToken(token) }
}

func WithHTTPTimeout(timeout time.Duration) ClientOption {
	return func(c *resty.Client) { c.SetTimeout(timeout) }
}

func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json")
	for _, opt := range opts {
		opt(httpClient)
	}
	return &HTTPClient{http: httpClient}
}

func (c *HTTPClient) Send(ctx context.Context, req models.ChatRequest) (string, error) {
	var out models.ChatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(chatPath)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	if !resp.IsSuccess() {
		return "", statusError(resp)
	}
	return out.Reply, nil
}

// Append stores a completed interview for the caller identified by the token.
func (c *HTTPClient) Append(ctx context.Context, record *models.InterviewRecord) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(models.RecordRequest{
			Mode:  record.Mode,
			Level: record.Level,
			Score: record.Score,
		}).
		Post(recordsPath)
	if err != nil {
		return fmt.Errorf("record request: %w", err)
	}
	if !resp.IsSuccess() {
		return statusError(resp)
	}
	return nil
}

// statusError reads either {"error": "..."} or {"message": "..."}.
func statusError(resp *resty.Response) error {
	body := resp.Body()
	message := gjson.GetBytes(body, "error").String()
	if message == "" {
		message = gjson.GetBytes(body, "message").String()
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode())
	}
	return &StatusError{Status: resp.StatusCode(), Message: message}
}
