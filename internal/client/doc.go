// Package client maintains a live view of one chat room.
//
// A Manager owns a push transport (SSE or WebSocket), reconnects it with
// exponential backoff when it fails, and runs the polling fallback during
// outages. Incoming events are folded into a local ordered message list,
// online set, and typing list; duplicate delivery from overlapping
// transports is absorbed by id-based dedup on messages and wholesale
// replacement for presence and typing.
package client
