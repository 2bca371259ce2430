// Package api provides the HTTP client for the chat server.
//
// It covers the polling surface (/api/messages, /api/rooms) used by the
// initial load and the fallback poller. The push channels at /api/events
// and /api/ws are consumed by the client package; EventsURL and
// WebSocketURL derive their endpoints from the same base URL.
package api
