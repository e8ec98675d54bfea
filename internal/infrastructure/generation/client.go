// Package generation calls the external letter-drafting model over the
// OpenAI chat-completions wire format.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taxletterhelp/notice-intelligence/internal/config"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/engine"
	"github.com/taxletterhelp/notice-intelligence/pkg/errors"
)

const (
	defaultTimeout    = 60 * time.Second
	defaultMaxRetries = 2
	retryBaseDelay    = 500 * time.Millisecond
)

// Client drafts response letters through a chat-completions endpoint.
// It satisfies the generator contract used by the analysis engine.
type Client struct {
	httpClient *http.Client
	cfg        config.GenerationConfig
	maxRetries int
	logger     *zap.Logger
}

var _ engine.Generator = (*Client)(nil)

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client, used by tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries overrides how many times transient failures are retried.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// NewClient builds a generation client from configuration.
func NewClient(cfg config.GenerationConfig, logger *zap.Logger, opts ...ClientOption) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
		maxRetries: defaultMaxRetries,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate sends the prompts to the model and returns the drafted letter
// text.  Transient backend failures (connection errors, 429, 5xx) are retried
// with exponential backoff before giving up.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal generation request")
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", c.wrapContextErr(ctx.Err())
			case <-time.After(retryBaseDelay * time.Duration(1<<(attempt-1))):
			}
			c.logger.Debug("retrying generation request", zap.Int("attempt", attempt))
		}

		text, retryable, err := c.doRequest(ctx, endpoint, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", lastErr
}

// doRequest performs one round-trip.  The second return reports whether the
// failure is worth retrying.
func (c *Client) doRequest(ctx context.Context, endpoint string, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", false, errors.Wrap(err, errors.ErrCodeGenerationFailed, "failed to build generation request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, c.wrapContextErr(ctx.Err())
		}
		return "", true, errors.Wrap(err, errors.ErrCodeGenerationUnavailable, "generation backend unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, errors.Wrap(err, errors.ErrCodeGenerationFailed, "failed to read generation response")
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", true, errors.Newf(errors.ErrCodeGenerationUnavailable,
			"generation backend returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, errors.Newf(errors.ErrCodeGenerationFailed,
			"generation request rejected with status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", false, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode generation response")
	}
	if parsed.Error != nil {
		return "", false, errors.Newf(errors.ErrCodeGenerationFailed,
			"generation backend error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", false, errors.New(errors.ErrCodeGenerationEmptyOutput, "generator returned empty output")
	}

	return parsed.Choices[0].Message.Content, false, nil
}

func (c *Client) wrapContextErr(err error) error {
	if err == context.DeadlineExceeded {
		return errors.Wrap(err, errors.ErrCodeGenerationTimeout, "generation request timed out")
	}
	return errors.Wrap(err, errors.ErrCodeGenerationFailed, "generation request canceled")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
