package chat

import "fmt"

const (
	// charsPerToken is the usual rough chars-to-tokens ratio for English-like
	// text. The estimate is a heuristic, not a tokenizer.
	charsPerToken = 4

	// perMessageOverhead accounts for the structural tokens (role markers,
	// separators) each message adds, expressed in characters.
	perMessageOverhead = 40
)

// Normalize validates a message sequence and returns a copy carrying only the
// permitted fields (role, content, optional name). Fails on an empty sequence
// or on any invalid message.
func Normalize(messages []Message) ([]Message, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyMessages
	}

	normalized := make([]Message, 0, len(messages))
	for i, msg := range messages {
		if err := msg.Validate(); err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}

		normalized = append(normalized, Message{
			Role:    msg.Role,
			Content: msg.Content,
			Name:    msg.Name,
		})
	}

	return normalized, nil
}

// ComposeWithSystem prepends systemMessage (when non-empty) ahead of the user
// messages and normalizes the result. The system message is always first.
func ComposeWithSystem(userMessages []Message, systemMessage string) ([]Message, error) {
	messages := userMessages
	if systemMessage != "" {
		messages = make([]Message, 0, len(userMessages)+1)
		messages = append(messages, Message{Role: RoleSystem, Content: systemMessage})
		messages = append(messages, userMessages...)
	}

	return Normalize(messages)
}

// EstimateTokens returns a heuristic token count for the sequence: content
// length plus a fixed per-message overhead, divided by four chars per token,
// rounded up per message.
func EstimateTokens(messages []Message) int {
	total := 0
	for _, msg := range messages {
		total += estimateMessageTokens(msg)
	}
	return total
}

func estimateMessageTokens(msg Message) int {
	chars := len(msg.Content) + perMessageOverhead
	return (chars + charsPerToken - 1) / charsPerToken
}

// TruncateToTokenLimit drops the oldest non-system messages until the
// estimated token total of the kept non-system messages fits maxTokens.
// System messages are always retained regardless of budget. Iteration runs
// from the most recent message backward and stops at the first message that
// would exceed the limit; the result restores chronological order with system
// messages first.
func TruncateToTokenLimit(messages []Message, maxTokens int) []Message {
	var system []Message
	var rest []Message
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			system = append(system, msg)
		} else {
			rest = append(rest, msg)
		}
	}

	var kept []Message
	running := 0
	for i := len(rest) - 1; i >= 0; i-- {
		cost := estimateMessageTokens(rest[i])
		if running+cost > maxTokens {
			break
		}
		running += cost
		kept = append(kept, rest[i])
	}

	result := make([]Message, 0, len(system)+len(kept))
	result = append(result, system...)
	// kept was collected newest-first; reverse back to chronological order.
	for i := len(kept) - 1; i >= 0; i-- {
		result = append(result, kept[i])
	}

	return result
}
