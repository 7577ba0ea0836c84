package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Keyring-Network/keyring-gavryn/relay/internal/config"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/events"
)

type gatewayFunc func(ctx context.Context, message string, emit func(events.Event)) error

func (f gatewayFunc) Run(ctx context.Context, message string, emit func(events.Event)) error {
	return f(ctx, message, emit)
}

type sseFrame struct {
	ID   string
	Data string
}

func readFrames(t *testing.T, body io.Reader) []sseFrame {
	t.Helper()
	var frames []sseFrame
	var current sseFrame
	var data []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data != nil {
				current.Data = strings.Join(data, "\n")
				frames = append(frames, current)
			}
			current, data = sseFrame{}, nil
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "id: "):
			current.ID = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		}
	}
	require.NoError(t, scanner.Err())
	return frames
}

func TestChatStreamsEventsInOrder(t *testing.T) {
	gateway := &MockGateway{Script: []events.Event{
		events.Status("Connecting to OpenAI..."),
		events.Status("Analyzing https://example.com..."),
		events.Result("[\n  {\n    \"name\": \"React\"\n  }\n]"),
		events.Done(),
	}}
	gateway.On("Run", mock.Anything, "What runs example.com?").Return(nil).Once()
	server := newTestServer(t, gateway, &MockSearch{}, config.Config{})
	defer server.Close()

	resp, err := http.Post(server.URL+"/chat", "application/json", strings.NewReader(`{"message":"What runs example.com?"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	require.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	frames := readFrames(t, resp.Body)
	require.Len(t, frames, 4)
	require.Equal(t, "Connecting to OpenAI...", frames[0].Data)
	require.Contains(t, frames[1].Data, "https://example.com")
	require.Equal(t, "RESULTS:\n[\n  {\n    \"name\": \"React\"\n  }\n]", frames[2].Data)
	require.Equal(t, "COMPLETE", frames[3].Data)

	streamID := strings.TrimSuffix(frames[0].ID, ":1")
	require.NotEmpty(t, streamID)
	for i, frame := range frames {
		require.Equal(t, streamID+":"+strconv.Itoa(i+1), frame.ID)
	}
	gateway.AssertNumberOfCalls(t, "Run", 1)
}

func TestChatStreamsSingleErrorFrame(t *testing.T) {
	gateway := &MockGateway{Script: []events.Event{
		events.Status("Connecting to OpenAI..."),
		events.Error("Could not identify a website to analyze."),
	}}
	gateway.On("Run", mock.Anything, "hello").Return(nil).Once()
	server := newTestServer(t, gateway, &MockSearch{}, config.Config{})
	defer server.Close()

	resp, err := http.Post(server.URL+"/chat", "application/json", strings.NewReader(`{"message":"hello"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	frames := readFrames(t, resp.Body)
	require.Len(t, frames, 2)
	require.Equal(t, "ERROR: Could not identify a website to analyze.", frames[1].Data)
}

func TestChatRejectsMissingMessage(t *testing.T) {
	for name, body := range map[string]string{
		"empty object":  `{}`,
		"blank message": `{"message":"   "}`,
		"wrong type":    `{"message":42}`,
		"invalid json":  `not json`,
		"empty body":    ``,
	} {
		t.Run(name, func(t *testing.T) {
			gateway := &MockGateway{}
			server := newTestServer(t, gateway, &MockSearch{}, config.Config{})
			defer server.Close()

			resp, err := http.Post(server.URL+"/chat", "application/json", strings.NewReader(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			var payload map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
			require.Equal(t, map[string]string{"error": "Message not found"}, payload)
			gateway.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
		})
	}
}

func TestChatSendsHeartbeatWhileWaiting(t *testing.T) {
	release := make(chan struct{})
	gateway := gatewayFunc(func(ctx context.Context, message string, emit func(events.Event)) error {
		emit(events.Status("Connecting to OpenAI..."))
		<-release
		emit(events.Done())
		return nil
	})
	server := newTestServer(t, gateway, &MockSearch{}, config.Config{StreamHeartbeat: 20 * time.Millisecond})
	defer server.Close()

	resp, err := http.Post(server.URL+"/chat", "application/json", strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if line == ": keep-alive\n" {
			break
		}
	}
	close(release)

	rest, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Contains(t, string(rest), "data: COMPLETE\n")
}

func TestChatWorkSurvivesDisconnect(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})
	var sawCancelable bool
	gateway := gatewayFunc(func(ctx context.Context, message string, emit func(events.Event)) error {
		defer close(finished)
		sawCancelable = ctx.Done() != nil
		emit(events.Status("Connecting to OpenAI..."))
		close(started)
		<-release
		for i := 0; i < 4*streamBuffer; i++ {
			emit(events.Status("still working"))
		}
		emit(events.Done())
		return nil
	})
	server := newTestServer(t, gateway, &MockSearch{}, config.Config{})
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, server.URL+"/chat", strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	<-started
	cancel()
	resp.Body.Close()
	close(release)

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("gateway blocked after the client went away")
	}
	require.False(t, sawCancelable)
}
