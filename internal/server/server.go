package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bobsby23/Team-Chat/internal/chat"
	"github.com/bobsby23/Team-Chat/internal/hub"
)

// Default server timings.
const (
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second
)

// Config holds the HTTP listener settings.
type Config struct {
	Addr string

	// RateRPS and RateBurst bound write requests per client IP.
	// RateRPS <= 0 disables the limiter.
	RateRPS   float64
	RateBurst int

	ShutdownTimeout time.Duration
}

// Server owns the HTTP listener and routes requests into the chat service
// and the connection hub.
type Server struct {
	logger  *slog.Logger
	cfg     Config
	chat    *chat.Service
	hub     *hub.Hub
	limiter *limiterPool
	httpSrv *http.Server
}

// New wires the service and hub into a configured server. Start must be
// called before it serves traffic.
func New(cfg Config, svc *chat.Service, h *hub.Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	s := &Server{
		logger: logger.With("component", "server"),
		cfg:    cfg,
		chat:   svc,
		hub:    h,
	}
	if cfg.RateRPS > 0 {
		s.limiter = newLimiterPool(cfg.RateRPS, cfg.RateBurst)
	}

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
	}
	return s
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/events", s.handleSSE).Methods(http.MethodGet)
	r.HandleFunc("/api/ws", s.handleWS).Methods(http.MethodGet)

	r.HandleFunc("/api/messages", s.handleMessagesGet).Methods(http.MethodGet)
	r.Handle("/api/messages", s.limitWrites(http.HandlerFunc(s.handleMessagesPost))).Methods(http.MethodPost)
	r.HandleFunc("/api/messages", s.handleMessagesDelete).Methods(http.MethodDelete)

	r.Handle("/api/rooms", s.limitWrites(http.HandlerFunc(s.handleRoomCreate))).Methods(http.MethodPost)
	r.HandleFunc("/api/rooms/{inviteCode}", s.handleRoomLookup).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

// Start serves until the context is cancelled, then drains connections
// within the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.cfg.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
