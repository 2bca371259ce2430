package poller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bobsby23/Team-Chat/internal/api"
	"github.com/bobsby23/Team-Chat/internal/model"
)

func newPollServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("action") == "typing" {
			json.NewEncoder(w).Encode(map[string]any{
				"typing":      []string{"bob"},
				"onlineUsers": []string{"alice", "bob"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]any{
				{"id": "1", "sender": "alice", "content": "hi"},
			},
			"onlineUsers": []string{"alice", "bob"},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPoller_Poll(t *testing.T) {
	srv := newPollServer(t)
	client := api.NewClient(srv.URL, api.WithTimeout(5*time.Second))

	var snaps atomic.Int32
	handler := SnapshotHandlerFunc(func(snap model.Snapshot, probe model.Probe) error {
		snaps.Add(1)
		if len(snap.Messages) != 1 {
			t.Errorf("snapshot messages = %+v", snap.Messages)
		}
		if len(probe.Typing) != 1 || probe.Typing[0] != "bob" {
			t.Errorf("probe typing = %v", probe.Typing)
		}
		return nil
	})

	// Long interval, trigger manually.
	p := New(Config{Interval: time.Hour}, client, handler, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p.ctx = ctx

	p.poll()

	if got := snaps.Load(); got != 1 {
		t.Errorf("handler calls = %d, want 1", got)
	}
}

func TestPoller_StartStop(t *testing.T) {
	srv := newPollServer(t)
	client := api.NewClient(srv.URL)

	var snaps atomic.Int32
	handler := SnapshotHandlerFunc(func(model.Snapshot, model.Probe) error {
		snaps.Add(1)
		return nil
	})

	p := New(Config{Interval: 20 * time.Millisecond}, client, handler, nil)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for snaps.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("only %d polls before deadline", snaps.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	// No more polls after stop.
	after := snaps.Load()
	time.Sleep(50 * time.Millisecond)
	if got := snaps.Load(); got != after {
		t.Errorf("polls after stop: %d -> %d", after, got)
	}
}

func TestPoller_DefaultConfig(t *testing.T) {
	p := New(Config{}, api.NewClient("http://localhost:1"), nil, nil)
	if p.cfg.Interval != 2*time.Second {
		t.Errorf("Interval = %v, want 2s", p.cfg.Interval)
	}
	if p.cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", p.cfg.Timeout)
	}
}
