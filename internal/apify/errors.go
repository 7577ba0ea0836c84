package apify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type APIError struct {
	StatusCode int
	Status     string
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("apify request failed: %s", e.Status)
	}
	return fmt.Sprintf("apify request failed: %s: %s", e.Status, e.Message)
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	var parsed struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Type = parsed.Error.Type
		apiErr.Message = parsed.Error.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

// RunError reports an actor run that finished in a state other than SUCCEEDED.
type RunError struct {
	RunID   string
	ActorID string
	Status  string
	Message string
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("actor %s run %s finished with status %s", e.ActorID, e.RunID, e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}
