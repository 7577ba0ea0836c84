package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Keyring-Network/keyring-gavryn/relay/internal/events"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/llm"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/logger"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/metrics"
)

const (
	connectingMessage = "Connecting to OpenAI..."
	noWebsiteMessage  = "Could not identify a website to analyze."
	unknownTarget     = "the website"
)

var (
	ErrEmptyMessage = errors.New("message is required")
	ErrNoToolCall   = errors.New("completion returned no tool call")
)

// Gateway turns one user message into a completion request, runs the tool
// calls the model asks for and reports progress as events.
type Gateway struct {
	provider     llm.Provider
	tools        *Toolset
	systemPrompt string
	logger       logger.Logger
}

func NewGateway(provider llm.Provider, tools *Toolset, systemPrompt string, log logger.Logger) *Gateway {
	return &Gateway{
		provider:     provider,
		tools:        tools,
		systemPrompt: systemPrompt,
		logger:       log.With(map[string]any{"stage": "STREAM"}),
	}
}

// Messages builds the two-message prompt sent for a user message.
func (g *Gateway) Messages(message string) []llm.Message {
	return []llm.Message{
		{Role: "system", Content: g.systemPrompt},
		{Role: "user", Content: message},
	}
}

// Run emits a status event, then for each tool call a progress event and a
// result event, then a done event. Any fault ends the sequence with a
// single error event and is returned.
func (g *Gateway) Run(ctx context.Context, message string, emit func(events.Event)) (err error) {
	if strings.TrimSpace(message) == "" {
		return ErrEmptyMessage
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
			g.logger.Error("unexpected panic while streaming", map[string]any{"panic": fmt.Sprint(recovered)})
			emit(events.Error(err.Error()))
		}
	}()

	g.logger.Info("starting completion stream", nil)
	emit(events.Status(connectingMessage))

	if err := g.run(ctx, message, emit); err != nil {
		if errors.Is(err, ErrNoToolCall) {
			g.logger.Warn("no tool call in completion", nil)
			emit(events.Error(noWebsiteMessage))
			return err
		}
		g.logger.WithError(err).Error("unexpected error while streaming", nil)
		emit(events.Error(err.Error()))
		return err
	}

	emit(events.Done())
	g.logger.Info("stream completed", nil)
	return nil
}

func (g *Gateway) run(ctx context.Context, message string, emit func(events.Event)) error {
	start := time.Now()
	completion, err := g.provider.Complete(ctx, g.Messages(message), g.tools.Specs())
	metrics.ObserveOutbound("llm", start, err)
	if err != nil {
		return err
	}
	if len(completion.ToolCalls) == 0 {
		return ErrNoToolCall
	}

	for _, call := range completion.ToolCalls {
		args, err := call.DecodeArguments()
		if err != nil {
			return fmt.Errorf("decode arguments for %s: %w", call.Function.Name, err)
		}
		target := unknownTarget
		if url, ok := args["url"].(string); ok && url != "" {
			target = url
		}
		g.logger.Info("tool call received", map[string]any{"tool": call.Function.Name, "target": target})
		emit(events.Status(fmt.Sprintf("Analyzing %s...", target)))

		tool, ok := g.tools.lookup(call.Function.Name)
		if !ok {
			g.logger.Warn("ignoring call to unregistered tool", map[string]any{"tool": call.Function.Name})
			continue
		}
		if err := tool.validate(args); err != nil {
			return err
		}
		output, err := tool.Handler(ctx, args)
		if err != nil {
			return fmt.Errorf("%s: %w", call.Function.Name, err)
		}
		text, err := formatResult(output)
		if err != nil {
			return fmt.Errorf("encode %s result: %w", call.Function.Name, err)
		}
		emit(events.Result(text))
		g.logger.Info("data sent", map[string]any{"tool": call.Function.Name, "target": target})
	}
	return nil
}

func formatResult(value any) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
