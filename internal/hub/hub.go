package hub

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bobsby23/Team-Chat/internal/event"
	"github.com/bobsby23/Team-Chat/internal/metrics"
)

// DefaultHeartbeatInterval is how often every connection receives a ping.
const DefaultHeartbeatInterval = 25 * time.Second

// Handle is a connection's output side. Send must not block indefinitely;
// a returned error marks the connection dead and it will be reaped.
type Handle interface {
	Send(data []byte) error
}

// Broadcaster is the narrow interface consumed by the presence tracker and
// the chat service.
type Broadcaster interface {
	Broadcast(ev event.Envelope) Result
}

// Result reports the outcome of one fan-out pass.
type Result struct {
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Remaining int `json:"remaining"`
}

// Config holds hub settings.
type Config struct {
	// HeartbeatInterval between ping frames. Zero means the default.
	HeartbeatInterval time.Duration
}

type conn struct {
	id        string
	handle    Handle
	createdAt time.Time
}

// Hub is the connection registry and broadcast fan-out.
type Hub struct {
	logger    *slog.Logger
	heartbeat time.Duration

	mu      sync.Mutex
	conns   map[string]*conn
	counter uint64

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a hub and starts its heartbeat loop.
func New(cfg Config, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}

	h := &Hub{
		logger:    logger,
		heartbeat: cfg.HeartbeatInterval,
		conns:     make(map[string]*conn),
		done:      make(chan struct{}),
	}

	h.wg.Add(1)
	go h.heartbeatLoop()

	return h
}

// Register stores a handle and returns its process-unique connection id.
func (h *Hub) Register(handle Handle) string {
	h.mu.Lock()
	h.counter++
	id := fmt.Sprintf("conn_%d_%d", h.counter, time.Now().UnixMilli())
	h.conns[id] = &conn{id: id, handle: handle, createdAt: time.Now()}
	total := len(h.conns)
	h.mu.Unlock()

	metrics.Connections.Set(float64(total))
	h.logger.Debug("connection registered", "conn_id", id, "total", total)
	return id
}

// Unregister removes a connection. Safe to call for ids already reaped.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	_, ok := h.conns[id]
	if ok {
		delete(h.conns, id)
	}
	total := len(h.conns)
	h.mu.Unlock()

	if ok {
		metrics.Connections.Set(float64(total))
		h.logger.Debug("connection unregistered", "conn_id", id, "total", total)
	}
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Broadcast serializes the event once and pushes it to every registered
// handle. A failing push is isolated from the others; its connection is
// removed in the same pass. No retry is attempted.
func (h *Hub) Broadcast(ev event.Envelope) Result {
	data, err := ev.Encode()
	if err != nil {
		// A payload built by this process should always encode.
		h.logger.Error("broadcast encode failed", "type", ev.Type, "error", err)
		return Result{Remaining: h.Len()}
	}

	targets := h.snapshot()

	var dead []string
	sent := 0
	for _, c := range targets {
		if err := c.handle.Send(data); err != nil {
			h.logger.Warn("push failed, reaping connection",
				"conn_id", c.id,
				"type", ev.Type,
				"error", err,
			)
			dead = append(dead, c.id)
			continue
		}
		sent++
	}

	remaining := h.reap(dead)

	metrics.Broadcasts.WithLabelValues(string(ev.Type)).Inc()
	metrics.Sends.WithLabelValues("ok").Add(float64(sent))
	metrics.Sends.WithLabelValues("failed").Add(float64(len(dead)))

	h.logger.Debug("broadcast complete",
		"type", ev.Type,
		"sent", sent,
		"failed", len(dead),
		"remaining", remaining,
	)

	return Result{Sent: sent, Failed: len(dead), Remaining: remaining}
}

// Close stops the heartbeat loop and drops all connections.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
	h.wg.Wait()

	h.mu.Lock()
	n := len(h.conns)
	h.conns = make(map[string]*conn)
	h.mu.Unlock()

	metrics.Connections.Set(0)
	h.logger.Info("hub closed", "dropped_connections", n)
}

// snapshot copies the current connections so sends happen outside the lock.
func (h *Hub) snapshot() []*conn {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		out = append(out, c)
	}
	return out
}

// reap removes dead connections and returns the remaining count.
func (h *Hub) reap(ids []string) int {
	h.mu.Lock()
	for _, id := range ids {
		delete(h.conns, id)
	}
	remaining := len(h.conns)
	h.mu.Unlock()

	if len(ids) > 0 {
		metrics.Reaped.Add(float64(len(ids)))
		metrics.Connections.Set(float64(remaining))
	}
	return remaining
}

// heartbeatLoop pings every connection on a fixed interval. A heartbeat
// failure is treated identically to a send failure.
func (h *Hub) heartbeatLoop() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.pingAll()
		}
	}
}

func (h *Hub) pingAll() {
	targets := h.snapshot()

	var dead []string
	for _, c := range targets {
		data, err := event.Ping(c.id).Encode()
		if err != nil {
			continue
		}
		if err := c.handle.Send(data); err != nil {
			h.logger.Warn("heartbeat failed, reaping connection",
				"conn_id", c.id,
				"error", err,
			)
			dead = append(dead, c.id)
		}
	}

	h.reap(dead)
}
