package chat_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ekovalev/wordweave/internal/chat"
)

func TestNormalize(t *testing.T) {
	t.Run("should preserve order and length for valid messages", func(t *testing.T) {
		messages := []chat.Message{
			{Role: chat.RoleSystem, Content: "you are a helpful assistant"},
			{Role: chat.RoleUser, Content: "hola"},
			{Role: chat.RoleAssistant, Content: "hello"},
			{Role: chat.RoleUser, Content: "gracias", Name: "learner"},
		}

		normalized, err := chat.Normalize(messages)

		require.NoError(t, err)
		require.Len(t, normalized, len(messages))
		for i := range messages {
			require.Equal(t, messages[i].Role, normalized[i].Role)
			require.Equal(t, messages[i].Content, normalized[i].Content)
		}
		require.Equal(t, "learner", normalized[3].Name)
	})

	t.Run("should fail on empty sequence", func(t *testing.T) {
		_, err := chat.Normalize(nil)
		require.ErrorIs(t, err, chat.ErrEmptyMessages)

		_, err = chat.Normalize([]chat.Message{})
		require.ErrorIs(t, err, chat.ErrEmptyMessages)
	})

	t.Run("should fail on missing role", func(t *testing.T) {
		_, err := chat.Normalize([]chat.Message{{Content: "hi"}})
		require.Error(t, err)
		require.Contains(t, err.Error(), "role")
	})

	t.Run("should fail on unknown role", func(t *testing.T) {
		_, err := chat.Normalize([]chat.Message{{Role: "narrator", Content: "hi"}})
		require.Error(t, err)
	})

	t.Run("should fail on empty content", func(t *testing.T) {
		_, err := chat.Normalize([]chat.Message{{Role: chat.RoleUser}})
		require.Error(t, err)
		require.Contains(t, err.Error(), "content")
	})

	t.Run("should fail on invalid UTF-8 content", func(t *testing.T) {
		_, err := chat.Normalize([]chat.Message{
			{Role: chat.RoleUser, Content: string([]byte{0xff, 0xfe, 0xfd})},
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "UTF-8")
	})
}

func TestComposeWithSystem(t *testing.T) {
	t.Run("should place system message first", func(t *testing.T) {
		messages, err := chat.ComposeWithSystem(
			[]chat.Message{{Role: chat.RoleUser, Content: "suggest words"}},
			"you are a vocabulary tutor",
		)

		require.NoError(t, err)
		require.Len(t, messages, 2)
		require.Equal(t, chat.RoleSystem, messages[0].Role)
		require.Equal(t, "you are a vocabulary tutor", messages[0].Content)
		require.Equal(t, chat.RoleUser, messages[1].Role)
	})

	t.Run("should skip system message when empty", func(t *testing.T) {
		messages, err := chat.ComposeWithSystem(
			[]chat.Message{{Role: chat.RoleUser, Content: "suggest words"}},
			"",
		)

		require.NoError(t, err)
		require.Len(t, messages, 1)
		require.Equal(t, chat.RoleUser, messages[0].Role)
	})

	t.Run("should fail when user messages are invalid", func(t *testing.T) {
		_, err := chat.ComposeWithSystem([]chat.Message{{Role: chat.RoleUser}}, "system")
		require.Error(t, err)
	})
}

func TestEstimateTokens(t *testing.T) {
	t.Run("should be monotone in content length", func(t *testing.T) {
		prev := 0
		for _, size := range []int{0, 1, 10, 100, 1000} {
			msgs := []chat.Message{{Role: chat.RoleUser, Content: strings.Repeat("a", size)}}
			estimate := chat.EstimateTokens(msgs)
			require.GreaterOrEqual(t, estimate, prev)
			prev = estimate
		}
	})

	t.Run("should charge per-message overhead", func(t *testing.T) {
		one := chat.EstimateTokens([]chat.Message{{Role: chat.RoleUser, Content: "hi"}})
		two := chat.EstimateTokens([]chat.Message{
			{Role: chat.RoleUser, Content: "hi"},
			{Role: chat.RoleUser, Content: "hi"},
		})
		require.Equal(t, one*2, two)
		// 2 chars + 40 overhead = 42 chars -> ceil(42/4) = 11 tokens.
		require.Equal(t, 11, one)
	})
}

func TestTruncateToTokenLimit(t *testing.T) {
	t.Run("should always retain system messages", func(t *testing.T) {
		messages := []chat.Message{
			{Role: chat.RoleSystem, Content: strings.Repeat("s", 400)},
			{Role: chat.RoleUser, Content: strings.Repeat("u", 400)},
		}

		kept := chat.TruncateToTokenLimit(messages, 0)

		require.Len(t, kept, 1)
		require.Equal(t, chat.RoleSystem, kept[0].Role)
	})

	t.Run("should drop oldest non-system messages first", func(t *testing.T) {
		messages := []chat.Message{
			{Role: chat.RoleSystem, Content: "tutor"},
			{Role: chat.RoleUser, Content: strings.Repeat("a", 120)},   // 40 tokens
			{Role: chat.RoleAssistant, Content: strings.Repeat("b", 120)}, // 40 tokens
			{Role: chat.RoleUser, Content: strings.Repeat("c", 120)},   // 40 tokens
		}

		kept := chat.TruncateToTokenLimit(messages, 80)

		require.Len(t, kept, 3)
		require.Equal(t, chat.RoleSystem, kept[0].Role)
		require.Equal(t, strings.Repeat("b", 120), kept[1].Content)
		require.Equal(t, strings.Repeat("c", 120), kept[2].Content)
	})

	t.Run("should keep zero non-system messages when a single one exceeds the budget", func(t *testing.T) {
		messages := []chat.Message{
			{Role: chat.RoleUser, Content: strings.Repeat("x", 4000)},
		}

		kept := chat.TruncateToTokenLimit(messages, 100)

		require.Empty(t, kept)
	})

	t.Run("should keep everything within budget in chronological order", func(t *testing.T) {
		messages := []chat.Message{
			{Role: chat.RoleUser, Content: "one"},
			{Role: chat.RoleAssistant, Content: "two"},
			{Role: chat.RoleUser, Content: "three"},
		}

		kept := chat.TruncateToTokenLimit(messages, 1000)

		require.Equal(t, messages, kept)
	})
}
