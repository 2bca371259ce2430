// Package hub implements the Connection Registry and Broadcast Hub.
//
// The hub:
//   - Tracks one output handle per live push-channel connection
//   - Fans typed events out to every registered handle
//   - Reaps a handle on its first failed push, within the same pass
//   - Heartbeats every connection on a fixed interval to defeat idle
//     transport timeouts
//
// There is no per-recipient queue and no retry; a failed push removes the
// connection and recovery is entirely client-driven.
package hub
