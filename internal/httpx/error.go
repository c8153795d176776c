package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

const maxErrorBody = 256

// HTTPError is a response with a status of 400 or above. The body is kept
// because the Bayfiles API reports failures in it rather than in the status.
type HTTPError struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	body := bytes.TrimSpace(e.Body)
	if len(body) > maxErrorBody {
		return fmt.Sprintf("httpx: status=%d body=%s...", e.StatusCode, body[:maxErrorBody])
	}
	return fmt.Sprintf("httpx: status=%d body=%s", e.StatusCode, body)
}

// Retryable reports whether the error should be considered transient.
func (e *HTTPError) Retryable() bool {
	if e == nil {
		return false
	}
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		(e.StatusCode >= 500 && e.StatusCode <= 599)
}

// JSONObject reports whether the body is a well-formed JSON object.
func (e *HTTPError) JSONObject() bool {
	if e == nil {
		return false
	}
	body := bytes.TrimSpace(e.Body)
	return len(body) > 0 && body[0] == '{' && json.Valid(body)
}
