package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobsby23/Team-Chat/internal/chat"
	"github.com/bobsby23/Team-Chat/internal/config"
	"github.com/bobsby23/Team-Chat/internal/hub"
	"github.com/bobsby23/Team-Chat/internal/presence"
	"github.com/bobsby23/Team-Chat/internal/server"
	"github.com/bobsby23/Team-Chat/internal/store"
	"github.com/bobsby23/Team-Chat/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (empty: built-in defaults)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting chatd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	var cfg *config.Config
	if *configPath == "" {
		cfg = config.Default()
	} else {
		var err error
		cfg, err = config.LoadAndValidate(*configPath)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	h := hub.New(hub.Config{
		HeartbeatInterval: cfg.Server.HeartbeatInterval,
	}, logger)
	defer h.Close()

	tracker := presence.New(presence.Config{
		TypingTTL: cfg.Server.TypingTTL,
	}, h, logger)

	svc := chat.NewService(st, h, tracker, logger)

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		RateRPS:         cfg.Server.RateRPS,
		RateBurst:       cfg.Server.RateBurst,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, svc, h, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start(gctx)
	})

	g.Go(func() error {
		return runRetentionSweep(gctx, svc, cfg.Retention.SweepInterval, logger)
	})

	if err := g.Wait(); err != nil {
		logger.Error("chatd exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("chatd stopped")
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Storage.Postgres, logger)
	default:
		logger.Info("using in-memory store")
		return store.NewMemory(), nil
	}
}

// runRetentionSweep deletes expired messages on a fixed interval until the
// context ends.
func runRetentionSweep(ctx context.Context, svc *chat.Service, interval time.Duration, logger *slog.Logger) error {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			deleted, err := svc.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("retention sweep failed", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Info("retention sweep complete", "deleted", deleted)
			}
		}
	}
}
