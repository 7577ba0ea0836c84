package events

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventText(t *testing.T) {
	require.Equal(t, "Connecting to OpenAI...", Status("Connecting to OpenAI...").Text())
	require.Equal(t, "RESULTS:\n[]", Result("[]").Text())
	require.Equal(t, "ERROR: boom", Error("boom").Text())
	require.Equal(t, "COMPLETE", Done().Text())
}

func TestEventTerminal(t *testing.T) {
	require.False(t, Status("x").Terminal())
	require.False(t, Result("x").Terminal())
	require.True(t, Error("x").Terminal())
	require.True(t, Done().Terminal())
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSSE(&buf, "", Status("Analyzing https://example.com...")))
	require.Equal(t, "data: Analyzing https://example.com...\n\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteSSE(&buf, "abc:2", Result("[\n  {\n    \"name\": \"React\"\n  }\n]")))
	require.Equal(t,
		"id: abc:2\n"+
			"data: RESULTS:\n"+
			"data: [\n"+
			"data:   {\n"+
			"data:     \"name\": \"React\"\n"+
			"data:   }\n"+
			"data: ]\n\n",
		buf.String(),
	)

	buf.Reset()
	require.NoError(t, WriteSSE(&buf, "", Error("line one\r\nline two")))
	require.Equal(t, "data: ERROR: line one\ndata: line two\n\n", buf.String())
}

func TestStreamDeliversInOrder(t *testing.T) {
	stream := NewStream(4)
	go func() {
		defer stream.Close()
		stream.Emit(Status("a"))
		stream.Emit(Result("b"))
		stream.Emit(Done())
	}()

	var got []Event
	for event := range stream.Events() {
		got = append(got, event)
	}
	require.Equal(t, []Event{Status("a"), Result("b"), Done()}, got)
}

func TestStreamEmitAfterAbandonDoesNotBlock(t *testing.T) {
	stream := NewStream(0)
	stream.Abandon()
	stream.Abandon()

	finished := make(chan struct{})
	go func() {
		stream.Emit(Status("nobody listening"))
		stream.Emit(Done())
		stream.Close()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked after the stream was abandoned")
	}
}
