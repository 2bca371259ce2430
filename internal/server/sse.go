package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/bobsby23/Team-Chat/internal/event"
)

// sseHandle serializes event frames onto one SSE response. Broadcasts come
// from other goroutines, so writes are mutex-guarded, and any write after
// the request context ends fails so the hub reaps the connection.
type sseHandle struct {
	mu      sync.Mutex
	ctx     context.Context
	w       http.ResponseWriter
	flusher http.Flusher
}

func (h *sseHandle) Send(data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.ctx.Err(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(h.w, "data: %s\n\n", data); err != nil {
		return err
	}
	h.flusher.Flush()
	return nil
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	handle := &sseHandle{ctx: r.Context(), w: w, flusher: flusher}
	id := s.hub.Register(handle)
	s.logger.Info("sse connected", "connection", id)

	welcome, err := event.Connected(id).Encode()
	if err == nil {
		err = handle.Send(welcome)
	}
	if err != nil {
		s.hub.Unregister(id)
		return
	}

	<-r.Context().Done()
	s.hub.Unregister(id)
	s.logger.Info("sse disconnected", "connection", id)
}
