package openrouter

import (
	"github.com/ekovalev/wordweave/internal/chat"
	"github.com/ekovalev/wordweave/internal/schema"
)

// ChatRequest represents a single outbound chat completion call.
type ChatRequest struct {
	Messages       []chat.Message
	Model          string         // overrides the configured default when set
	Parameters     map[string]any // sampling parameters, allow-listed
	ResponseFormat *schema.ResponseFormat
}

// ChatResponse represents a decoded chat completion response.
type ChatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Created int64        `json:"created,omitempty"`
	Choices []ChatChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// ChatChoice represents a single completion choice.
type ChatChoice struct {
	Index        int          `json:"index"`
	Message      chat.Message `json:"message"`
	FinishReason string       `json:"finish_reason"`
}

// Usage tracks token consumption reported by the upstream.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Content returns the content of the first choice, or empty when absent.
func (r *ChatResponse) Content() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// streamChunk mirrors the wire shape of a single SSE data event.
type streamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// StreamResult represents a single increment from a streaming completion.
type StreamResult struct {
	Delta string
	Done  bool
	Error error
}
