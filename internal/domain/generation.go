package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ekovalev/wordweave/internal/chat"
	"github.com/ekovalev/wordweave/internal/observability"
	"github.com/ekovalev/wordweave/internal/openrouter"
	"github.com/ekovalev/wordweave/internal/schema"
)

// wordsEnvelopeSchema validates only the response envelope. Individual entries
// are checked during extraction so one malformed suggestion cannot fail the
// whole batch.
var wordsEnvelopeSchema = &schema.Schema{
	Type: schema.TypeObject,
	Properties: map[string]*schema.Schema{
		"words": {
			Type: schema.TypeArray,
			Items: &schema.Schema{
				Type:       schema.TypeObject,
				Properties: map[string]*schema.Schema{},
			},
		},
	},
	Required: []string{"words"},
}

// GenerationService produces vocabulary suggestions through the chat transport.
type GenerationService struct {
	client   ChatClient
	cache    SuggestionCache // nil disables caching
	cacheTTL time.Duration
}

// NewGenerationService creates a new generation service (DI constructor).
func NewGenerationService(client ChatClient, cache SuggestionCache, cacheTTL time.Duration) *GenerationService {
	return &GenerationService{
		client:   client,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// GenerateWords returns up to cmd.Count validated suggestions for the command.
func (s *GenerationService) GenerateWords(ctx context.Context, cmd GenerateWordsCommand) ([]WordSuggestion, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	ctx = observability.WithLanguage(ctx, cmd.LearningLanguage)
	logger := observability.FromContext(ctx)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cmd)
		switch {
		case err == nil && len(cached) > 0:
			logger.Info("suggestion cache hit",
				observability.Int("suggestions", len(cached)))
			return cached, nil
		case err != nil && !errors.Is(err, ErrCacheMiss):
			logger.Warn("suggestion cache get failed, continuing without cache",
				observability.Error(err))
		}
	}

	messages, err := chat.ComposeWithSystem(
		[]chat.Message{{Role: chat.RoleUser, Content: buildPrompt(cmd)}},
		systemPrompt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	resp, err := s.client.SendChat(ctx, &openrouter.ChatRequest{
		Messages:       messages,
		ResponseFormat: &schema.ResponseFormat{Type: schema.FormatJSONObject},
	})
	if err != nil {
		return nil, mapTransportError(err)
	}

	payload, err := schema.ParseJSONResponse(resp.Content(), wordsEnvelopeSchema)
	if err != nil {
		logger.Warn("AI response failed envelope validation",
			observability.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrInvalidAIResponse, err)
	}

	suggestions := extractSuggestions(payload, cmd)
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("%w: no valid suggestions in response", ErrInvalidAIResponse)
	}

	logger.Info("generated word suggestions",
		observability.Int("requested", cmd.Count),
		observability.Int("returned", len(suggestions)))

	if s.cache != nil {
		if setErr := s.cache.Set(ctx, cmd, suggestions, s.cacheTTL); setErr != nil {
			logger.Warn("failed to store suggestions in cache",
				observability.Error(setErr))
		}
	}

	return suggestions, nil
}

// mapTransportError translates the transport taxonomy into the domain
// sentinels the HTTP layer maps to status codes.
func mapTransportError(err error) error {
	trErr, ok := openrouter.AsError(err)
	if !ok {
		return fmt.Errorf("%w: %w", ErrExternalService, err)
	}

	switch trErr.Kind {
	case openrouter.KindValidation:
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	case openrouter.KindRateLimit:
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	case openrouter.KindNetwork:
		return fmt.Errorf("%w: %w", ErrGenerationTimeout, err)
	case openrouter.KindSchema, openrouter.KindUnexpectedResponse, openrouter.KindSafety:
		return fmt.Errorf("%w: %w", ErrInvalidAIResponse, err)
	default:
		return fmt.Errorf("%w: %w", ErrExternalService, err)
	}
}

// extractSuggestions pulls up to cmd.Count valid entries from the decoded
// payload. Malformed entries and already-known terms are skipped, not fatal.
func extractSuggestions(payload any, cmd GenerateWordsCommand) []WordSuggestion {
	envelope, ok := payload.(map[string]any)
	if !ok {
		return nil
	}

	entries, ok := envelope["words"].([]any)
	if !ok {
		return nil
	}

	excluded := make(map[string]bool, len(cmd.ExcludeTerms))
	for _, term := range cmd.ExcludeTerms {
		excluded[strings.ToLower(strings.TrimSpace(term))] = true
	}

	suggestions := make([]WordSuggestion, 0, cmd.Count)
	for _, entry := range entries {
		fields, isObject := entry.(map[string]any)
		if !isObject {
			continue
		}

		term, _ := fields["term"].(string)
		translation, _ := fields["translation"].(string)
		term = strings.TrimSpace(term)
		translation = strings.TrimSpace(translation)
		if term == "" || translation == "" {
			continue
		}

		if excluded[strings.ToLower(term)] {
			continue
		}

		examples, _ := fields["examplesMd"].(string)

		suggestions = append(suggestions, WordSuggestion{
			Term:        truncateRunes(term, maxTermLength),
			Translation: truncateRunes(translation, maxTermLength),
			ExamplesMd:  truncateRunes(sanitizeMarkdown(examples), maxExamplesLength),
		})

		if len(suggestions) == cmd.Count {
			break
		}
	}

	return suggestions
}
