package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tool is a function descriptor advertised to the model.
type Tool struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

type FunctionSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// DecodeArguments parses the JSON-encoded argument object of the call.
// A blank argument string decodes to an empty map.
func (c ToolCall) DecodeArguments() (map[string]any, error) {
	args := map[string]any{}
	raw := strings.TrimSpace(c.Function.Arguments)
	if raw == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

type Completion struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
}

type Provider interface {
	Complete(ctx context.Context, messages []Message, tools []Tool) (*Completion, error)
}

type Config struct {
	Provider         string
	Model            string
	BaseURL          string
	OpenAIAPIKey     string
	OpenRouterAPIKey string
	Timeout          time.Duration
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}), nil
	case "openrouter":
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:  cfg.OpenRouterAPIKey,
			Model:   cfg.Model,
			BaseURL: defaultIfEmpty(cfg.BaseURL, "https://openrouter.ai/api/v1"),
			Timeout: cfg.Timeout,
		}), nil
	default:
		return nil, ErrUnsupportedProvider{Provider: cfg.Provider}
	}
}

func defaultIfEmpty(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
