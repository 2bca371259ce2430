package client

import "context"

// Transport opens one push channel to the server. Connect may be called
// again after a failure; Close tears down the current channel.
type Transport interface {
	// Connect opens the channel and returns one channel of raw event
	// frames and one of terminal errors. Both end when the channel dies.
	Connect(ctx context.Context) (<-chan []byte, <-chan error, error)

	// Close tears down the current channel, if any.
	Close() error
}
