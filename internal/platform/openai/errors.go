package openai

import (
	"fmt"
	"net/http"
	"strings"
)

const maxErrorBody = 512

// HTTPError is a non-2xx answer from the chat-completions endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "openai: upstream error"
	}
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("openai: upstream status %d", e.StatusCode)
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("openai: upstream status %d: %s", e.StatusCode, body)
}

// Retryable reports rate limiting and 5xx answers.
func (e *HTTPError) Retryable() bool {
	if e == nil {
		return false
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
