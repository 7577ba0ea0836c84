package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrMissingAPIKey = errors.New("missing API key for remote provider")
	ErrMissingModel  = errors.New("missing model for remote provider")
	ErrNoChoices     = errors.New("LLM response had no choices")
)

// ErrUnsupportedProvider is returned by NewProvider for a provider name it
// cannot build.
type ErrUnsupportedProvider struct {
	Provider string
}

func (e ErrUnsupportedProvider) Error() string {
	return fmt.Sprintf("unsupported LLM provider: %s", e.Provider)
}

// APIError is a non-2xx answer from the completion endpoint. Message holds
// the provider's explanation when the body carried one.
type APIError struct {
	StatusCode int
	Status     string
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("LLM request failed: %s", e.Status)
	}
	return fmt.Sprintf("LLM request failed: %s: %s", e.Status, e.Message)
}

// newAPIError accepts both {"error":{"message":...}} and {"error":"..."}
// bodies.
func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return apiErr
	}
	var detail struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detail); err == nil {
		apiErr.Type = detail.Type
		apiErr.Message = strings.TrimSpace(detail.Message)
		return apiErr
	}
	var text string
	if err := json.Unmarshal(envelope.Error, &text); err == nil {
		apiErr.Message = strings.TrimSpace(text)
	}
	return apiErr
}
