// Package openrouter implements the chat completion transport: a hand-rolled
// HTTP client for the OpenRouter API with bounded retries, per-attempt
// timeouts, typed failure classification and SSE streaming.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/ekovalev/wordweave/internal/chat"
	"github.com/ekovalev/wordweave/internal/observability"
	"github.com/ekovalev/wordweave/internal/schema"
)

const (
	// maxRetries is the number of additional attempts after the first one.
	maxRetries = 3

	initialBackoff = 1000 * time.Millisecond
	maxBackoff     = 10 * time.Second
	maxJitter      = 1000 * time.Millisecond

	defaultTimeout = 30 * time.Second

	errorBodyLimit = 512
)

// allowedParameters is the fixed allow-list of sampling parameters accepted on
// a request. Anything else is rejected before the call is dispatched.
var allowedParameters = map[string]bool{
	"temperature":       true,
	"top_p":             true,
	"max_tokens":        true,
	"frequency_penalty": true,
	"presence_penalty":  true,
	"stop":              true,
}

// MetricsRecorder receives per-call outcome metrics. Implementations must not
// block; the client calls them synchronously on the request path.
type MetricsRecorder interface {
	ChatSucceeded(ctx context.Context, model string, latency time.Duration, promptTokens, completionTokens int)
	ChatFailed(ctx context.Context, model string, category string, latency time.Duration)
}

// Client is the OpenRouter chat completion client. Configuration is frozen at
// construction; the zero value is not usable.
type Client struct {
	cfg        Config
	defaults   map[string]any
	timeout    time.Duration
	httpClient *http.Client
	metrics    MetricsRecorder

	// Injection points for tests; production uses the defaults below.
	backoffFunc func(attempt int) time.Duration
	jitterFunc  func() time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new Client. Fails when the API key or base URL is missing.
func NewClient(cfg Config, metrics MetricsRecorder) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, newError(KindConfiguration, "API key is required", nil)
	}

	if cfg.BaseURL == "" {
		return nil, newError(KindConfiguration, "base URL is required", nil)
	}

	timeout := defaultTimeout
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}

	return &Client{
		cfg:         cfg,
		defaults:    cfg.defaultParameters(),
		timeout:     timeout,
		httpClient:  &http.Client{},
		metrics:     metrics,
		backoffFunc: defaultBackoff,
		jitterFunc:  defaultJitter,
		sleep:       sleepContext,
	}, nil
}

// defaultBackoff doubles the initial delay per attempt, capped.
func defaultBackoff(attempt int) time.Duration {
	delay := initialBackoff << uint(attempt)
	if delay > maxBackoff {
		delay = maxBackoff
	}
	return delay
}

func defaultJitter() time.Duration {
	return time.Duration(rand.Int63n(int64(maxJitter)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SendChat dispatches a chat completion request, retrying transient failures
// up to the attempt budget.
func (c *Client) SendChat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	body, model, buildErr := c.buildPayload(req, false)
	if buildErr != nil {
		return nil, buildErr
	}

	ctx = observability.WithModel(ctx, model)
	start := time.Now()

	resp, err := c.doWithRetry(ctx, body)
	if err != nil {
		c.recordFailure(ctx, model, err, time.Since(start))
		return nil, err
	}

	c.recordSuccess(ctx, model, resp, time.Since(start))
	return resp, nil
}

// buildPayload normalizes and validates the request and produces the wire body.
func (c *Client) buildPayload(req *ChatRequest, stream bool) (map[string]any, string, error) {
	if req == nil {
		return nil, "", validationError("request cannot be nil", nil)
	}

	messages, err := chat.Normalize(req.Messages)
	if err != nil {
		return nil, "", validationError("invalid messages", err)
	}

	model := req.Model
	if model == "" {
		model = c.cfg.DefaultModel
	}

	merged := make(map[string]any, len(c.defaults)+len(req.Parameters))
	for key, value := range c.defaults {
		merged[key] = value
	}
	for key, value := range req.Parameters {
		if !allowedParameters[key] {
			return nil, "", validationError(fmt.Sprintf("parameter %q is not allowed", key), nil)
		}
		merged[key] = value
	}

	if req.ResponseFormat != nil {
		if fmtErr := schema.ValidateResponseFormat(req.ResponseFormat); fmtErr != nil {
			return nil, "", validationError("invalid response format", fmtErr)
		}
	}

	body := map[string]any{
		"model":    model,
		"messages": messages,
	}
	for key, value := range merged {
		body[key] = value
	}
	if req.ResponseFormat != nil {
		body["response_format"] = req.ResponseFormat
	}
	if stream {
		body["stream"] = true
	}

	return body, model, nil
}

// doWithRetry runs the attempt loop: exponential backoff with jitter between
// attempts, Retry-After replacing the computed wait when the server sent one,
// immediate return on non-retryable failures.
func (c *Client) doWithRetry(ctx context.Context, body map[string]any) (*ChatResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, validationError("failed to marshal request", err)
	}

	logger := observability.FromContext(ctx)

	var lastErr *Error
	var overrideWait time.Duration

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoffFunc(attempt-1) + c.jitterFunc()
			if overrideWait > 0 {
				wait = overrideWait
				overrideWait = 0
			}

			if sleepErr := c.sleep(ctx, wait); sleepErr != nil {
				if lastErr != nil {
					return nil, lastErr
				}
				return nil, networkError("request aborted", sleepErr)
			}
		}

		resp, attemptErr := c.attempt(ctx, payload)
		if attemptErr == nil {
			return resp, nil
		}

		if !attemptErr.Retryable {
			return nil, attemptErr
		}

		logger.Warn("chat completion attempt failed",
			observability.Int("attempt", attempt+1),
			observability.Error(attemptErr),
		)

		lastErr = attemptErr
		if attemptErr.RetryAfter > 0 {
			overrideWait = attemptErr.RetryAfter
		}
	}

	return nil, lastErr
}

// attempt performs one HTTP exchange under the per-attempt timeout. The
// timeout context derives from the caller's context, so either signal firing
// aborts the in-flight call.
func (c *Client) attempt(ctx context.Context, payload []byte) (*ChatResponse, *Error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(
		attemptCtx,
		http.MethodPost,
		c.cfg.BaseURL+"/chat/completions",
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, validationError("failed to create request", err)
	}

	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// An aborted attempt (timeout or caller cancellation) lands here and
		// is classified as a retryable network failure; the retry loop exits
		// through the caller's context on the next wait if it was the source.
		return nil, networkError("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp)
	}

	var chatResp ChatResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&chatResp); decodeErr != nil {
		return nil, newError(KindSchema, "failed to decode response", decodeErr)
	}

	if len(chatResp.Choices) == 0 {
		return nil, newError(KindUnexpectedResponse, "response contains no choices", nil)
	}

	if reason := chatResp.Choices[0].FinishReason; reason == "content_filter" {
		return nil, newError(KindSafety, "response was filtered by the upstream safety system", nil)
	}

	return &chatResp, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	if c.cfg.AppURL != "" {
		req.Header.Set("HTTP-Referer", c.cfg.AppURL)
	}
	if c.cfg.AppTitle != "" {
		req.Header.Set("X-Title", c.cfg.AppTitle)
	}
}

// classifyStatus maps a non-200 response to a typed error. The response body
// is captured as a bounded snippet for logs, never returned to end users.
func classifyStatus(resp *http.Response) *Error {
	snippet := readSnippet(resp.Body, errorBodyLimit)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		err := newError(KindAuth, snippet, nil)
		err.Status = resp.StatusCode
		return err

	case resp.StatusCode == http.StatusTooManyRequests:
		err := newError(KindRateLimit, snippet, nil)
		err.Status = resp.StatusCode
		err.Retryable = true
		err.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		return err

	case resp.StatusCode >= http.StatusInternalServerError:
		err := newError(KindServer, snippet, nil)
		err.Status = resp.StatusCode
		err.Retryable = true
		return err

	default:
		err := newError(KindUnexpectedResponse, snippet, nil)
		err.Status = resp.StatusCode
		return err
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

func readSnippet(r io.Reader, limit int) string {
	data, _ := io.ReadAll(io.LimitReader(r, int64(limit)))
	return string(data)
}

func (c *Client) recordSuccess(ctx context.Context, model string, resp *ChatResponse, latency time.Duration) {
	if c.metrics == nil {
		return
	}

	promptTokens, completionTokens := 0, 0
	if resp.Usage != nil {
		promptTokens = resp.Usage.PromptTokens
		completionTokens = resp.Usage.CompletionTokens
	}

	c.metrics.ChatSucceeded(ctx, model, latency, promptTokens, completionTokens)
}

func (c *Client) recordFailure(ctx context.Context, model string, err error, latency time.Duration) {
	if c.metrics == nil {
		return
	}

	category := string(KindUnexpectedResponse)
	if trErr, ok := AsError(err); ok {
		category = string(trErr.Kind)
	}

	c.metrics.ChatFailed(ctx, model, category, latency)
}
