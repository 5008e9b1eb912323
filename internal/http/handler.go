// Package http exposes the word-generation API over HTTP and maps domain
// errors to status codes and machine-readable codes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ekovalev/wordweave/internal/domain"
	"github.com/ekovalev/wordweave/internal/observability"
	"github.com/ekovalev/wordweave/internal/openrouter"
)

// WordGenerator produces vocabulary suggestions for a command.
type WordGenerator interface {
	GenerateWords(ctx context.Context, cmd domain.GenerateWordsCommand) ([]domain.WordSuggestion, error)
}

// Handler handles HTTP requests.
type Handler struct {
	generator WordGenerator
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(generator WordGenerator) *Handler {
	return &Handler{
		generator: generator,
	}
}

type generateResponse struct {
	Words []domain.WordSuggestion `json:"words"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HandleGenerateWords processes word-generation requests.
func (h *Handler) HandleGenerateWords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
		return
	}

	var cmd domain.GenerateWordsCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_request")
		return
	}

	ctx = observability.WithLanguage(ctx, cmd.LearningLanguage)

	logger := observability.FromContext(ctx)
	logger.Info("word generation request received",
		observability.String("learning_language", cmd.LearningLanguage),
		observability.String("difficulty", string(cmd.Difficulty)),
		observability.Int("count", cmd.Count),
	)

	suggestions, err := h.generator.GenerateWords(ctx, cmd)
	if err != nil {
		h.writeDomainError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if encodeErr := json.NewEncoder(w).Encode(generateResponse{Words: suggestions}); encodeErr != nil {
		logger.Error("failed to encode response", observability.Error(encodeErr))
	}
}

// writeDomainError maps domain sentinels to status codes. Upstream error
// details are logged, never returned to the browser.
func (h *Handler) writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := observability.FromContext(ctx)
	logger.Error("word generation failed", observability.Error(err))

	switch {
	case errors.Is(err, domain.ErrInvalidCommand):
		writeError(w, http.StatusBadRequest, domain.ErrInvalidCommand.Error(), "invalid_request")

	case errors.Is(err, domain.ErrInvalidAIResponse):
		writeError(w, http.StatusUnprocessableEntity, domain.ErrInvalidAIResponse.Error(), "invalid_ai_response")

	case errors.Is(err, domain.ErrRateLimited):
		if trErr, ok := openrouter.AsError(err); ok && trErr.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(trErr.RetryAfter.Seconds())))
		}
		writeError(w, http.StatusTooManyRequests, domain.ErrRateLimited.Error(), "rate_limited")

	case errors.Is(err, domain.ErrGenerationTimeout):
		writeError(w, http.StatusGatewayTimeout, domain.ErrGenerationTimeout.Error(), "generation_timeout")

	case errors.Is(err, domain.ErrExternalService):
		writeError(w, http.StatusBadGateway, domain.ErrExternalService.Error(), "ai_provider_error")

	default:
		writeError(w, http.StatusInternalServerError, "internal error", "internal_error")
	}
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: code})
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		// Already written status, can't change it, just log.
		return
	}
}
