package openrouter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// StreamChat dispatches a streaming chat completion request and returns the
// upstream increments as a channel of results. The channel is closed when the
// stream finishes, errors, or the context fires. No per-attempt timeout is
// applied; the stream lives as long as the caller's context allows.
func (c *Client) StreamChat(ctx context.Context, req *ChatRequest) (<-chan StreamResult, error) {
	body, _, buildErr := c.buildPayload(req, true)
	if buildErr != nil {
		return nil, buildErr
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, validationError("failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.cfg.BaseURL+"/chat/completions",
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, validationError("failed to create request", err)
	}

	c.setHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")

	//nolint:bodyclose // Response body is closed in the processStream goroutine
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, networkError("request failed", err)
	}

	if resp.StatusCode != http.StatusOK {
		classified := classifyStatus(resp)
		_ = resp.Body.Close()
		return nil, classified
	}

	results := make(chan StreamResult)
	go c.processStream(resp, results)

	return results, nil
}

// processStream parses the SSE-framed response body line by line: only
// "data:"-prefixed lines carry chunks, and "[DONE]" terminates the stream.
func (c *Client) processStream(resp *http.Response, results chan<- StreamResult) {
	defer close(results)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		data, isData := strings.CutPrefix(line, "data: ")
		if !isData {
			// Comment or event-name lines; OpenRouter sends ": OPENROUTER PROCESSING" keepalives.
			continue
		}

		if data == "[DONE]" {
			results <- StreamResult{Done: true}
			return
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			results <- StreamResult{Error: newError(KindSchema, "failed to decode stream chunk", err)}
			return
		}

		if len(chunk.Choices) == 0 {
			continue
		}

		done := chunk.Choices[0].FinishReason != nil
		results <- StreamResult{
			Delta: chunk.Choices[0].Delta.Content,
			Done:  done,
		}

		if done {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		results <- StreamResult{Error: fmt.Errorf("stream read failed: %w", err)}
	}
}
