// Package server exposes the chat service over HTTP.
//
// Two push channels feed the same connection registry: an SSE stream at
// /api/events and a WebSocket at /api/ws. The REST surface under
// /api/messages and /api/rooms mirrors what the stream carries, so a client
// that loses its push channel can poll the same state.
package server
