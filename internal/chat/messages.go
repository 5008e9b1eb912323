// Package chat defines the chat message model shared by the transport and the
// generation service, plus the composition helpers that prepare message
// sequences for an outbound completion call.
package chat

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Message roles accepted by the chat completions API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ErrEmptyMessages indicates an empty message sequence was submitted.
var ErrEmptyMessages = errors.New("messages cannot be empty")

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

var validRoles = map[string]bool{
	RoleSystem:    true,
	RoleUser:      true,
	RoleAssistant: true,
	RoleTool:      true,
}

// Validate checks that the message carries a known role and well-formed content.
// Content must survive a strict UTF-8 check; anything else is treated as
// corrupt input rather than silently re-encoded.
func (m Message) Validate() error {
	if m.Role == "" {
		return errors.New("message role is required")
	}

	if !validRoles[m.Role] {
		return fmt.Errorf("unknown message role: %q", m.Role)
	}

	if m.Content == "" {
		return errors.New("message content is required")
	}

	if !utf8.ValidString(m.Content) {
		return errors.New("message content is not valid UTF-8")
	}

	return nil
}
