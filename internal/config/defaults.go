package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAddr               = ":8080"
	DefaultHeartbeatInterval  = 25 * time.Second
	DefaultTypingTTL          = 3 * time.Second
	DefaultRateRPS            = 5.0
	DefaultRateBurst          = 10
	DefaultShutdownTimeout    = 10 * time.Second
	DefaultBackend            = "memory"
	DefaultBaseURL            = "http://localhost:8080"
	DefaultTransport          = "sse"
	DefaultPollInterval       = 2 * time.Second
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 30 * time.Second
	DefaultMaxReconnects      = 5
	DefaultSweepInterval      = 1 * time.Hour
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 10
	DefaultMinConns           = 2
)

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.HeartbeatInterval == 0 {
		c.Server.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Server.TypingTTL == 0 {
		c.Server.TypingTTL = DefaultTypingTTL
	}
	if c.Server.RateRPS == 0 {
		c.Server.RateRPS = DefaultRateRPS
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = DefaultRateBurst
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Storage defaults
	if c.Storage.Backend == "" {
		c.Storage.Backend = DefaultBackend
	}
	if c.Storage.Postgres.Port == 0 {
		c.Storage.Postgres.Port = DefaultDBPort
	}
	if c.Storage.Postgres.SSLMode == "" {
		c.Storage.Postgres.SSLMode = DefaultDBSSLMode
	}
	if c.Storage.Postgres.MaxConns == 0 {
		c.Storage.Postgres.MaxConns = DefaultMaxConns
	}
	if c.Storage.Postgres.MinConns == 0 {
		c.Storage.Postgres.MinConns = DefaultMinConns
	}

	// Client defaults
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = DefaultBaseURL
	}
	if c.Client.Transport == "" {
		c.Client.Transport = DefaultTransport
	}
	if c.Client.PollInterval == 0 {
		c.Client.PollInterval = DefaultPollInterval
	}
	if c.Client.ReconnectBaseDelay == 0 {
		c.Client.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Client.ReconnectMaxDelay == 0 {
		c.Client.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Client.MaxReconnects == 0 {
		c.Client.MaxReconnects = DefaultMaxReconnects
	}

	// Retention defaults
	if c.Retention.SweepInterval == 0 {
		c.Retention.SweepInterval = DefaultSweepInterval
	}
}
