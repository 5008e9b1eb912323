package domain

import (
	"context"
	"time"

	"github.com/ekovalev/wordweave/internal/openrouter"
)

// ChatClient is the outbound chat completion transport.
type ChatClient interface {
	// SendChat dispatches a chat completion request and returns the decoded response.
	SendChat(ctx context.Context, req *openrouter.ChatRequest) (*openrouter.ChatResponse, error)
}

// SuggestionCache stores generated suggestion batches keyed by their command.
type SuggestionCache interface {
	// Get retrieves a cached batch, or ErrCacheMiss.
	Get(ctx context.Context, cmd GenerateWordsCommand) ([]WordSuggestion, error)

	// Set stores a batch with the given TTL.
	Set(ctx context.Context, cmd GenerateWordsCommand, suggestions []WordSuggestion, ttl time.Duration) error
}
