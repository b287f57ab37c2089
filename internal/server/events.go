package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const keepAliveInterval = 15 * time.Second

// handleEvents streams a server-sent event per completed validation.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.detail(w, r, http.StatusInternalServerError, "", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(events)

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("failed to encode event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: validation\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
