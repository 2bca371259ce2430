package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("http://localhost:8080")

		if c.baseURL != "http://localhost:8080" {
			t.Errorf("baseURL = %q", c.baseURL)
		}
		if c.httpClient.Timeout != 10*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 10*time.Second)
		}
		if c.maxRetries != 3 {
			t.Errorf("maxRetries = %d, want 3", c.maxRetries)
		}
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		c := NewClient("http://localhost:8080/")
		if c.baseURL != "http://localhost:8080" {
			t.Errorf("baseURL = %q", c.baseURL)
		}
	})

	t.Run("with options", func(t *testing.T) {
		hc := &http.Client{Timeout: time.Second}
		c := NewClient("http://localhost:8080",
			WithRetries(5, 2*time.Second),
			WithHTTPClient(hc),
		)
		if c.maxRetries != 5 || c.retryBackoff != 2*time.Second {
			t.Errorf("retries = (%d, %v)", c.maxRetries, c.retryBackoff)
		}
		if c.httpClient != hc {
			t.Error("custom HTTP client not set")
		}
	})
}

func TestStreamURLs(t *testing.T) {
	c := NewClient("http://localhost:8080")
	if got := c.EventsURL(); got != "http://localhost:8080/api/events" {
		t.Errorf("EventsURL = %q", got)
	}
	if got := c.WebSocketURL(); got != "ws://localhost:8080/api/ws" {
		t.Errorf("WebSocketURL = %q", got)
	}

	tls := NewClient("https://chat.example.com")
	if got := tls.WebSocketURL(); got != "wss://chat.example.com/api/ws" {
		t.Errorf("WebSocketURL = %q", got)
	}
}

func TestSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("room") != "ABCD1234" {
			t.Errorf("room = %q", r.URL.Query().Get("room"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]any{
				{"id": "1", "sender": "alice", "content": "hi"},
			},
			"onlineUsers": []string{"alice"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	snap, err := c.Snapshot(context.Background(), "ABCD1234")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Messages) != 1 || snap.Messages[0].Sender != "alice" {
		t.Errorf("messages = %+v", snap.Messages)
	}
	if len(snap.OnlineUsers) != 1 {
		t.Errorf("onlineUsers = %v", snap.OnlineUsers)
	}
}

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q", r.Method)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["sender"] != "alice" || body["content"] != "hello" {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"id": "42", "sender": "alice", "content": "hello"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	msg, err := c.SendMessage(context.Background(), "", "alice", "hello")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.ID != "42" {
		t.Errorf("id = %q, want 42", msg.ID)
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"room not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FindRoom(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "room not found" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if apiErr.IsRetryable() {
		t.Error("404 should not be retryable")
	}
}

func TestGetRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"typing": []string{}, "onlineUsers": []string{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetries(3, 10*time.Millisecond))
	if _, err := c.Probe(context.Background(), ""); err != nil {
		t.Fatalf("Probe after retries: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestPostDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetries(3, 10*time.Millisecond))
	if _, err := c.SendMessage(context.Background(), "", "alice", "hi"); err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (writes are never replayed)", got)
	}
}

func TestRetryRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewClient(srv.URL, WithRetries(5, time.Second))
	_, err := c.Snapshot(ctx, "")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}
