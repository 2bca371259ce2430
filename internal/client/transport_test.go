package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestSSETransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "data: {\"type\":\"connected\",\"connectionId\":\"c1\"}\n\n")
		flusher.Flush()
		fmt.Fprint(w, ": comment line\n")
		fmt.Fprint(w, "data: {\"type\":\"ping\"}\n\n")
		flusher.Flush()
	}))
	defer srv.Close()

	tr := NewSSETransport(srv.URL)
	defer tr.Close()

	messages, errs, err := tr.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	first := <-messages
	if !strings.Contains(string(first), "connected") {
		t.Errorf("first frame = %s", first)
	}
	second := <-messages
	if !strings.Contains(string(second), "ping") {
		t.Errorf("second frame = %s", second)
	}

	// Handler returned, so the stream ends with an error.
	select {
	case err := <-errs:
		if err == nil {
			t.Error("stream end reported nil error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no terminal error after server closed the stream")
	}
}

func TestSSETransportRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr := NewSSETransport(srv.URL)
	if _, _, err := tr.Connect(context.Background()); err == nil {
		t.Fatal("expected connect error on 503")
	}
}

func TestWSTransport(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connected","connectionId":"c1"}`))
		// Hold until the client closes.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	tr := NewWSTransport("ws" + strings.TrimPrefix(srv.URL, "http"))
	messages, errs, err := tr.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	select {
	case data := <-messages:
		if !strings.Contains(string(data), "connected") {
			t.Errorf("frame = %s", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
	}

	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case <-errs:
	case <-time.After(2 * time.Second):
		t.Fatal("no terminal error after close")
	}
}
