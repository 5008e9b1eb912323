package domain

import "errors"

// Sentinel errors the HTTP layer maps to status codes. The transport's typed
// error stays wrapped underneath for logging and Retry-After extraction.
var (
	// ErrInvalidCommand indicates a malformed generation command or request shape.
	ErrInvalidCommand = errors.New("invalid generation command")

	// ErrInvalidAIResponse indicates the model returned output no valid
	// suggestion could be extracted from.
	ErrInvalidAIResponse = errors.New("invalid AI response")

	// ErrRateLimited indicates the upstream rejected the call with 429.
	ErrRateLimited = errors.New("AI provider rate limit exceeded")

	// ErrGenerationTimeout indicates the upstream call was aborted before a
	// response arrived.
	ErrGenerationTimeout = errors.New("AI generation timed out")

	// ErrExternalService indicates any other upstream failure.
	ErrExternalService = errors.New("AI provider request failed")

	// ErrCacheMiss indicates no cached suggestion batch was found.
	ErrCacheMiss = errors.New("cache miss")
)
