package config

import (
	"time"

	"github.com/bobsby23/Team-Chat/internal/store"
)

// Config is the root configuration for chatd and its clients.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Client    ClientConfig    `yaml:"client"`
	Retention RetentionConfig `yaml:"retention"`
}

// ServerConfig configures the HTTP façade and the broadcast hub.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	TypingTTL         time.Duration `yaml:"typing_ttl"`
	RateRPS           float64       `yaml:"rate_rps"`
	RateBurst         int           `yaml:"rate_burst"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig selects and configures the store backend.
type StorageConfig struct {
	Backend  string         `yaml:"backend"` // "memory" or "postgres"
	Postgres store.PGConfig `yaml:"postgres"`
}

// ClientConfig configures the stream manager and polling fallback.
type ClientConfig struct {
	BaseURL            string        `yaml:"base_url"`
	Transport          string        `yaml:"transport"` // "sse" or "websocket"
	PollInterval       time.Duration `yaml:"poll_interval"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	MaxReconnects      int           `yaml:"max_reconnects"`
}

// RetentionConfig configures the expired-message sweeper.
type RetentionConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
}
