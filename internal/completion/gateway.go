// Package completion forwards prompts to a third-party text-completion service.
package completion

import (
	"context"
	"errors"
	"net/http"
)

// Gateway is a stateless request/response pass-through to a completion API.
// One call is one upstream round trip: no retry, no streaming.
type Gateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Status() KeyStatus
}

// KeyStatus reports whether an API key is configured without revealing it.
type KeyStatus struct {
	HasKey     bool   `json:"hasKey"`
	KeyPreview string `json:"keyPreview,omitempty"`
}

// Error is an upstream failure. StatusCode is the upstream HTTP status when known.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "failed to generate text"
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status to report for err: the upstream status
// when it is a client or server error, otherwise 500.
func StatusCode(err error) int {
	var ce *Error
	if errors.As(err, &ce) && ce.StatusCode >= 400 && ce.StatusCode < 600 {
		return ce.StatusCode
	}
	return http.StatusInternalServerError
}

// previewLength is how many leading characters of the API key Status exposes.
const previewLength = 7

func keyStatus(key string) KeyStatus {
	if key == "" {
		return KeyStatus{}
	}
	preview := key
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}
	return KeyStatus{HasKey: true, KeyPreview: preview}
}
