package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const wsHandshakeTimeout = 10 * time.Second

// WSTransport consumes the /api/ws stream.
type WSTransport struct {
	url string

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSTransport creates a transport for the given ws:// or wss:// URL.
func NewWSTransport(url string) *WSTransport {
	return &WSTransport{url: url}
}

// Connect dials the server and starts a reader goroutine.
func (t *WSTransport) Connect(ctx context.Context) (<-chan []byte, <-chan error, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: wsHandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, t.url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("dial websocket: %w", err)
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()

	messages := make(chan []byte, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(messages)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				errs <- err
				return
			}
			select {
			case messages <- data:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return messages, errs, nil
}

// Close sends a close frame and tears down the connection.
func (t *WSTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	t.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	err := t.conn.Close()
	t.conn = nil
	return err
}
