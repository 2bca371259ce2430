package store

import (
	"fmt"
	"net/url"
)

// BuildConnString builds a PostgreSQL connection string from config.
func BuildConnString(cfg PGConfig) string {
	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		escapedPassword,
		cfg.Host,
		port,
		cfg.Name,
		sslMode,
	)
}
