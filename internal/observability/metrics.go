package observability

import (
	"context"
	"log/slog"
	"time"
)

// EventBus publishes chat metrics as structured events. It satisfies the
// transport's MetricsRecorder interface; emission never returns an error and
// never blocks the request path.
type EventBus struct {
	logger *slog.Logger
}

// NewEventBus creates a new event bus.
func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		logger: logger,
	}
}

// ChatSucceeded records a successful chat completion.
func (e *EventBus) ChatSucceeded(
	ctx context.Context,
	model string,
	latency time.Duration,
	promptTokens, completionTokens int,
) {
	if e.logger == nil {
		return
	}

	e.logger.InfoContext(ctx, "chat_completion_succeeded",
		"model", model,
		"latency_ms", latency.Milliseconds(),
		"prompt_tokens", promptTokens,
		"completion_tokens", completionTokens,
	)
}

// ChatFailed records a failed chat completion with its error category.
func (e *EventBus) ChatFailed(
	ctx context.Context,
	model string,
	category string,
	latency time.Duration,
) {
	if e.logger == nil {
		return
	}

	e.logger.InfoContext(ctx, "chat_completion_failed",
		"model", model,
		"error_category", category,
		"latency_ms", latency.Milliseconds(),
	)
}
