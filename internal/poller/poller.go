package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bobsby23/Team-Chat/internal/api"
	"github.com/bobsby23/Team-Chat/internal/model"
)

// SnapshotHandler receives each poll cycle's state.
type SnapshotHandler interface {
	HandleSnapshot(snap model.Snapshot, probe model.Probe) error
}

// SnapshotHandlerFunc is a function adapter for SnapshotHandler.
type SnapshotHandlerFunc func(model.Snapshot, model.Probe) error

func (f SnapshotHandlerFunc) HandleSnapshot(s model.Snapshot, p model.Probe) error {
	return f(s, p)
}

// Config holds poller configuration.
type Config struct {
	Room     string        // Invite code; empty means the public room.
	Interval time.Duration // Poll interval (default: 2s)
	Timeout  time.Duration // Per-request timeout (default: 5s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 2 * time.Second,
		Timeout:  5 * time.Second,
	}
}

// Poller periodically fetches room state via the REST API.
type Poller struct {
	cfg     Config
	client  *api.Client
	handler SnapshotHandler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, client *api.Client, handler SnapshotHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Poller{
		cfg:     cfg,
		client:  client,
		handler: handler,
		logger:  logger,
	}
}

// Start begins the polling loop. The first poll happens immediately.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("fallback poller started",
		"room", p.cfg.Room,
		"interval", p.cfg.Interval,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("fallback poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.poll()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

// poll fetches one snapshot plus probe and hands them off.
func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	snap, err := p.client.Snapshot(ctx, p.cfg.Room)
	if err != nil {
		p.logger.Warn("snapshot poll failed", "room", p.cfg.Room, "err", err)
		return
	}

	probe, err := p.client.Probe(ctx, p.cfg.Room)
	if err != nil {
		p.logger.Warn("presence probe failed", "room", p.cfg.Room, "err", err)
		return
	}

	if p.handler != nil {
		if err := p.handler.HandleSnapshot(snap, probe); err != nil {
			p.logger.Warn("snapshot handler failed", "err", err)
		}
	}
}
