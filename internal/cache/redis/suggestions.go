// Package redis implements the suggestion cache on top of Redis. Generated
// batches are stored under a fingerprint of the generation command so an
// identical request within the TTL is served without an upstream call.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ekovalev/wordweave/internal/domain"
	"github.com/ekovalev/wordweave/internal/observability"
)

// SuggestionCache implements domain.SuggestionCache backed by Redis.
type SuggestionCache struct {
	client *redis.Client
}

// NewSuggestionCache creates a new Redis suggestion cache.
func NewSuggestionCache(client *redis.Client) *SuggestionCache {
	return &SuggestionCache{
		client: client,
	}
}

// Get retrieves a cached batch for the command, or domain.ErrCacheMiss.
func (c *SuggestionCache) Get(ctx context.Context, cmd domain.GenerateWordsCommand) ([]domain.WordSuggestion, error) {
	key := cacheKey(cmd)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get failed: %w", err)
	}

	var suggestions []domain.WordSuggestion
	if unmarshalErr := json.Unmarshal(data, &suggestions); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal cached suggestions: %w", unmarshalErr)
	}

	observability.FromContext(ctx).Debug("suggestion cache hit",
		observability.String("cache_key", key),
		observability.Int("suggestions", len(suggestions)))

	return suggestions, nil
}

// Set stores a batch with the given TTL.
func (c *SuggestionCache) Set(
	ctx context.Context,
	cmd domain.GenerateWordsCommand,
	suggestions []domain.WordSuggestion,
	ttl time.Duration,
) error {
	data, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("failed to marshal suggestions: %w", err)
	}

	key := cacheKey(cmd)
	if setErr := c.client.Set(ctx, key, data, ttl).Err(); setErr != nil {
		return fmt.Errorf("cache set failed: %w", setErr)
	}

	observability.FromContext(ctx).Debug("suggestion cache stored",
		observability.String("cache_key", key),
		observability.Int("data_size", len(data)))

	return nil
}

// cacheKey fingerprints the command fields that change the generated batch.
func cacheKey(cmd domain.GenerateWordsCommand) string {
	parts := []string{
		cmd.LearningLanguage,
		cmd.UserLanguage,
		string(cmd.Difficulty),
		fmt.Sprintf("count=%d", cmd.Count),
		cmd.CategoryContext,
		strings.Join(cmd.ExcludeTerms, ","),
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("suggestions:%s", hex.EncodeToString(hash[:]))
}
