package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Keyring-Network/keyring-gavryn/relay/internal/events"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/metrics"
)

const streamBuffer = 16

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	decodeBody(r, &req)
	if strings.TrimSpace(req.Message) == "" {
		s.logger.Warn("chat request without message", nil)
		writeJSON(w, errorResponse("Message not found"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	stream := events.NewStream(streamBuffer)
	defer stream.Abandon()

	// The completion and actor run finish even if the caller goes away.
	work := context.WithoutCancel(r.Context())
	go func() {
		defer stream.Close()
		_ = s.gateway.Run(work, req.Message, stream.Emit)
	}()

	streamID := uuid.New().String()
	log := s.logger.With(map[string]any{"stream_id": streamID})
	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	seq := 0
	for {
		select {
		case event, ok := <-stream.Events():
			if !ok {
				return
			}
			seq++
			if err := events.WriteSSE(w, fmt.Sprintf("%s:%d", streamID, seq), event); err != nil {
				log.WithError(err).Warn("failed to write stream event", nil)
				return
			}
			flusher.Flush()
			metrics.StreamEventsTotal.WithLabelValues(string(event.Kind)).Inc()
		case <-heartbeat.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			log.Info("client disconnected from stream", map[string]any{"sent": seq})
			return
		}
	}
}
