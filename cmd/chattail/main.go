package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bobsby23/Team-Chat/internal/api"
	"github.com/bobsby23/Team-Chat/internal/client"
	"github.com/bobsby23/Team-Chat/internal/config"
	"github.com/bobsby23/Team-Chat/internal/event"
	"github.com/bobsby23/Team-Chat/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (empty: built-in defaults)")
	serverURL := flag.String("server", "", "chat server base URL (overrides config)")
	room := flag.String("room", "", "room invite code (empty: public room)")
	user := flag.String("user", "chattail", "username to join as")
	transportName := flag.String("transport", "", "push transport: sse or websocket (overrides config)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting chattail", "version", version.Version)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadAndValidate(*configPath)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}
	if *serverURL != "" {
		cfg.Client.BaseURL = *serverURL
	}
	if *transportName != "" {
		cfg.Client.Transport = *transportName
	}

	rest := api.NewClient(cfg.Client.BaseURL,
		api.WithLogger(logger),
		api.WithTimeout(10*time.Second),
	)

	var transport client.Transport
	switch cfg.Client.Transport {
	case "sse":
		transport = client.NewSSETransport(rest.EventsURL())
	case "websocket":
		transport = client.NewWSTransport(rest.WebSocketURL())
	default:
		fmt.Fprintf(os.Stderr, "unknown transport %q\n", cfg.Client.Transport)
		os.Exit(2)
	}

	mgr := client.New(client.Config{
		Room:               *room,
		Username:           *user,
		ReconnectBaseDelay: cfg.Client.ReconnectBaseDelay,
		ReconnectMaxDelay:  cfg.Client.ReconnectMaxDelay,
		MaxReconnects:      cfg.Client.MaxReconnects,
		PollInterval:       cfg.Client.PollInterval,
	}, transport, rest, logger)

	mgr.OnStateChange(func(s client.State) {
		fmt.Printf("--- %s\n", s)
	})
	mgr.OnEvent(printEvent)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if err := mgr.Start(ctx); err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}

	// Replay the initial snapshot before live events.
	for _, msg := range mgr.Messages() {
		fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Format("15:04:05"), msg.Sender, msg.Content)
	}

	<-sigCh
	fmt.Println("--- leaving")
	if err := mgr.Close(); err != nil {
		logger.Warn("close failed", "error", err)
	}
}

func printEvent(ev event.Envelope) {
	now := time.Now().Format("15:04:05")
	switch ev.Type {
	case event.TypeNewMessage:
		if ev.Message != nil {
			fmt.Printf("[%s] %s: %s\n", now, ev.Message.Sender, ev.Message.Content)
		}
	case event.TypeReactionUpdate:
		if ev.Message != nil {
			fmt.Printf("[%s] reactions on %s: %v\n", now, ev.Message.ID, ev.Message.Reactions)
		}
	case event.TypeTypingUpdate:
		if len(ev.Typing) > 0 {
			fmt.Printf("[%s] typing: %s\n", now, strings.Join(ev.Typing, ", "))
		}
	case event.TypeUserJoined:
		fmt.Printf("[%s] %s joined (online: %s)\n", now, ev.Username, strings.Join(ev.OnlineUsers, ", "))
	case event.TypeUserLeft:
		fmt.Printf("[%s] %s left (online: %s)\n", now, ev.Username, strings.Join(ev.OnlineUsers, ", "))
	}
}
