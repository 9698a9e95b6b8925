package httpclient

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RequestError is any failed request that is not a recoverable 401: a non-2xx
// response, or a network/timeout failure (StatusCode 0). The message is taken
// from the server's structured error body when present.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}

// genericFailureMessage is used when the server returned no parseable error body.
const genericFailureMessage = "request failed"

// errorBody is the backend's error envelope: message is either a string or
// an array of strings (validation errors arrive as arrays).
type errorBody struct {
	Message json.RawMessage `json:"message"`
}

// messageFromBody extracts a display message from a failure response body.
// Array messages are joined with ", "; anything unparseable falls back to a
// generic message so no failure is ever silent.
func messageFromBody(body []byte, statusCode int) string {
	fallback := fmt.Sprintf("%s (status %d)", genericFailureMessage, statusCode)
	if len(body) == 0 {
		return fallback
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Message) == 0 {
		return fallback
	}

	var single string
	if err := json.Unmarshal(eb.Message, &single); err == nil && single != "" {
		return single
	}

	var many []string
	if err := json.Unmarshal(eb.Message, &many); err == nil && len(many) > 0 {
		return strings.Join(many, ", ")
	}

	return fallback
}
