package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// SSETransport consumes the /api/events stream.
type SSETransport struct {
	url        string
	httpClient *http.Client

	mu     sync.Mutex
	cancel context.CancelFunc
	body   io.ReadCloser
}

// NewSSETransport creates a transport for the given events URL. The HTTP
// client carries no overall timeout; the stream is meant to stay open.
func NewSSETransport(url string) *SSETransport {
	return &SSETransport{
		url:        url,
		httpClient: &http.Client{},
	}
}

// Connect opens the stream and starts a reader goroutine that emits the
// payload of each data frame.
func (t *SSETransport) Connect(ctx context.Context) (<-chan []byte, <-chan error, error) {
	reqCtx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, t.url, nil)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, nil, fmt.Errorf("open stream: unexpected status %d", resp.StatusCode)
	}

	t.mu.Lock()
	t.cancel = cancel
	t.body = resp.Body
	t.mu.Unlock()

	messages := make(chan []byte, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(messages)
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			messages <- []byte(strings.TrimPrefix(line, "data: "))
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		errs <- err
	}()

	return messages, errs, nil
}

// Close tears down the current stream.
func (t *SSETransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.body != nil {
		err := t.body.Close()
		t.body = nil
		return err
	}
	return nil
}
