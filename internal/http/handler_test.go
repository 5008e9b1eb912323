package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ekovalev/wordweave/internal/domain"
	wordhttp "github.com/ekovalev/wordweave/internal/http"
	"github.com/ekovalev/wordweave/internal/openrouter"
)

// mockGenerator is a hand-rolled WordGenerator for testing.
type mockGenerator struct {
	suggestions []domain.WordSuggestion
	err         error
	lastCommand *domain.GenerateWordsCommand
}

func (m *mockGenerator) GenerateWords(_ context.Context, cmd domain.GenerateWordsCommand) ([]domain.WordSuggestion, error) {
	m.lastCommand = &cmd
	if m.err != nil {
		return nil, m.err
	}
	return m.suggestions, nil
}

func postGenerate(t *testing.T, handler *wordhttp.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(nethttp.MethodPost, "/v1/words/generate", bytes.NewReader(payload))
	w := httptest.NewRecorder()

	handler.HandleGenerateWords(w, req)
	return w
}

func TestHandleGenerateWords(t *testing.T) {
	command := domain.GenerateWordsCommand{
		LearningLanguage: "Spanish",
		UserLanguage:     "English",
		Difficulty:       domain.DifficultyMedium,
		Count:            3,
	}

	t.Run("should return suggestions as JSON", func(t *testing.T) {
		generator := &mockGenerator{
			suggestions: []domain.WordSuggestion{
				{Term: "hola", Translation: "hello", ExamplesMd: "**Hola!**"},
			},
		}
		handler := wordhttp.NewHandler(generator)

		w := postGenerate(t, handler, command)

		require.Equal(t, nethttp.StatusOK, w.Code)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response struct {
			Words []domain.WordSuggestion `json:"words"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		require.Len(t, response.Words, 1)
		require.Equal(t, "hola", response.Words[0].Term)

		require.NotNil(t, generator.lastCommand)
		require.Equal(t, command, *generator.lastCommand)
	})

	t.Run("should reject non-POST methods", func(t *testing.T) {
		handler := wordhttp.NewHandler(&mockGenerator{})

		req := httptest.NewRequest(nethttp.MethodGet, "/v1/words/generate", nil)
		w := httptest.NewRecorder()
		handler.HandleGenerateWords(w, req)

		require.Equal(t, nethttp.StatusMethodNotAllowed, w.Code)
	})

	t.Run("should reject a malformed body", func(t *testing.T) {
		handler := wordhttp.NewHandler(&mockGenerator{})

		req := httptest.NewRequest(nethttp.MethodPost, "/v1/words/generate", bytes.NewReader([]byte("{broken")))
		w := httptest.NewRecorder()
		handler.HandleGenerateWords(w, req)

		require.Equal(t, nethttp.StatusBadRequest, w.Code)
	})

	t.Run("should map domain errors to status codes", func(t *testing.T) {
		tests := []struct {
			err    error
			status int
			code   string
		}{
			{fmt.Errorf("%w: count must be at least 1", domain.ErrInvalidCommand), nethttp.StatusBadRequest, "invalid_request"},
			{fmt.Errorf("%w: no valid suggestions", domain.ErrInvalidAIResponse), nethttp.StatusUnprocessableEntity, "invalid_ai_response"},
			{fmt.Errorf("%w: upstream said no", domain.ErrRateLimited), nethttp.StatusTooManyRequests, "rate_limited"},
			{fmt.Errorf("%w: deadline exceeded", domain.ErrGenerationTimeout), nethttp.StatusGatewayTimeout, "generation_timeout"},
			{fmt.Errorf("%w: status 503", domain.ErrExternalService), nethttp.StatusBadGateway, "ai_provider_error"},
			{fmt.Errorf("something else entirely"), nethttp.StatusInternalServerError, "internal_error"},
		}

		for _, tc := range tests {
			t.Run(tc.code, func(t *testing.T) {
				handler := wordhttp.NewHandler(&mockGenerator{err: tc.err})

				w := postGenerate(t, handler, command)

				require.Equal(t, tc.status, w.Code)

				var response struct {
					Error string `json:"error"`
					Code  string `json:"code"`
				}
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				require.Equal(t, tc.code, response.Code)
				require.NotEmpty(t, response.Error)
			})
		}
	})

	t.Run("should not leak upstream error details", func(t *testing.T) {
		handler := wordhttp.NewHandler(&mockGenerator{
			err: fmt.Errorf("%w: upstream body: sk-secret leaked stack trace", domain.ErrExternalService),
		})

		w := postGenerate(t, handler, command)

		require.Equal(t, nethttp.StatusBadGateway, w.Code)
		require.NotContains(t, w.Body.String(), "sk-secret")
	})

	t.Run("should echo Retry-After on rate limit", func(t *testing.T) {
		transportErr := &openrouter.Error{
			Kind:       openrouter.KindRateLimit,
			Status:     nethttp.StatusTooManyRequests,
			Retryable:  true,
			RetryAfter: 7 * time.Second,
		}
		handler := wordhttp.NewHandler(&mockGenerator{
			err: fmt.Errorf("%w: %w", domain.ErrRateLimited, transportErr),
		})

		w := postGenerate(t, handler, command)

		require.Equal(t, nethttp.StatusTooManyRequests, w.Code)
		require.Equal(t, "7", w.Header().Get("Retry-After"))
	})
}

func TestHandleHealth(t *testing.T) {
	handler := wordhttp.NewHandler(&mockGenerator{})

	req := httptest.NewRequest(nethttp.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.HandleHealth(w, req)

	require.Equal(t, nethttp.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}
