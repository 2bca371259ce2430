package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bobsby23/Team-Chat/internal/event"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is unauthenticated and served cross-origin.
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// wsHandle adapts a WebSocket connection to the hub. Failed or timed-out
// writes surface as errors so the broadcast pass reaps the connection.
type wsHandle struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (h *wsHandle) Send(data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = h.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return h.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	handle := &wsHandle{conn: conn}
	id := s.hub.Register(handle)
	s.logger.Info("websocket connected", "connection", id)

	welcome, err := event.Connected(id).Encode()
	if err == nil {
		err = handle.Send(welcome)
	}
	if err != nil {
		s.hub.Unregister(id)
		conn.Close()
		return
	}

	// The stream is one-way; the read loop only notices the peer going
	// away.
	go func() {
		defer func() {
			s.hub.Unregister(id)
			conn.Close()
			s.logger.Info("websocket disconnected", "connection", id)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
