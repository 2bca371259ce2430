package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.HeartbeatInterval < 0 {
		return errors.New("server.heartbeat_interval must be positive")
	}
	if c.Server.RateRPS < 0 {
		return errors.New("server.rate_rps must be >= 0")
	}

	switch c.Storage.Backend {
	case "memory":
	case "postgres":
		pg := c.Storage.Postgres
		if pg.Host == "" {
			return errors.New("storage.postgres.host is required")
		}
		if pg.Name == "" {
			return errors.New("storage.postgres.name is required")
		}
		if pg.User == "" {
			return errors.New("storage.postgres.user is required")
		}
		if pg.Password == "" {
			return errors.New("storage.postgres.password is required")
		}
		if pg.MinConns > pg.MaxConns {
			return fmt.Errorf("storage.postgres.min_conns (%d) cannot exceed max_conns (%d)", pg.MinConns, pg.MaxConns)
		}
	default:
		return fmt.Errorf("storage.backend must be memory or postgres, got %q", c.Storage.Backend)
	}

	switch c.Client.Transport {
	case "sse", "websocket":
	default:
		return fmt.Errorf("client.transport must be sse or websocket, got %q", c.Client.Transport)
	}
	if c.Client.MaxReconnects < 1 {
		return errors.New("client.max_reconnects must be >= 1")
	}
	if c.Client.ReconnectBaseDelay > c.Client.ReconnectMaxDelay {
		return errors.New("client.reconnect_base_delay cannot exceed reconnect_max_delay")
	}

	return nil
}
