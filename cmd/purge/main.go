package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/bobsby23/Team-Chat/internal/config"
	"github.com/bobsby23/Team-Chat/internal/store"
	"github.com/bobsby23/Team-Chat/internal/version"
)

// One-shot cleanup of expired messages, for cron or manual runs against
// the postgres backend.
func main() {
	configPath := flag.String("config", "configs/chatd.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting purge", "version", version.Version, "config", *configPath)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Storage.Backend != "postgres" {
		logger.Error("purge only makes sense against a persistent backend",
			"backend", cfg.Storage.Backend,
		)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	st, err := store.NewPostgres(ctx, cfg.Storage.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	deleted, err := st.DeleteExpired(ctx, time.Now())
	if err != nil {
		logger.Error("purge failed", "error", err)
		os.Exit(1)
	}

	logger.Info("purge complete", "deleted", deleted)
}
