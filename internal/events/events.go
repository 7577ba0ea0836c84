package events

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

type Kind string

const (
	KindStatus Kind = "status"
	KindResult Kind = "result"
	KindError  Kind = "error"
	KindDone   Kind = "done"
)

const (
	resultPrefix = "RESULTS:"
	errorPrefix  = "ERROR: "
	doneMarker   = "COMPLETE"
)

// Event is one message of a chat stream.
type Event struct {
	Kind    Kind   `json:"kind"`
	Payload string `json:"payload,omitempty"`
}

func Status(message string) Event {
	return Event{Kind: KindStatus, Payload: message}
}

func Result(payload string) Event {
	return Event{Kind: KindResult, Payload: payload}
}

func Error(message string) Event {
	return Event{Kind: KindError, Payload: message}
}

func Done() Event {
	return Event{Kind: KindDone}
}

// Terminal reports whether no further events follow this one.
func (e Event) Terminal() bool {
	return e.Kind == KindError || e.Kind == KindDone
}

// Text renders the event as the line-oriented text carried in SSE data.
func (e Event) Text() string {
	switch e.Kind {
	case KindResult:
		return resultPrefix + "\n" + e.Payload
	case KindError:
		return errorPrefix + e.Payload
	case KindDone:
		return doneMarker
	default:
		return e.Payload
	}
}

// WriteSSE writes the event as one server-sent event frame. Multi-line text
// is split across consecutive data fields.
func WriteSSE(w io.Writer, id string, event Event) error {
	var b strings.Builder
	if id != "" {
		fmt.Fprintf(&b, "id: %s\n", id)
	}
	text := strings.ReplaceAll(event.Text(), "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// Stream carries events from a single producer to a single consumer. Once
// the consumer abandons the stream, Emit drops events instead of blocking.
type Stream struct {
	ch        chan Event
	abandoned chan struct{}
	closeOnce sync.Once
	leaveOnce sync.Once
}

func NewStream(buffer int) *Stream {
	return &Stream{
		ch:        make(chan Event, buffer),
		abandoned: make(chan struct{}),
	}
}

func (s *Stream) Emit(event Event) {
	select {
	case <-s.abandoned:
		return
	default:
	}
	select {
	case s.ch <- event:
	case <-s.abandoned:
	}
}

func (s *Stream) Events() <-chan Event {
	return s.ch
}

// Close is called by the producer once it has emitted its last event.
func (s *Stream) Close() {
	s.closeOnce.Do(func() { close(s.ch) })
}

// Abandon is called by the consumer when it stops reading.
func (s *Stream) Abandon() {
	s.leaveOnce.Do(func() { close(s.abandoned) })
}
