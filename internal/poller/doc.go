// Package poller implements the HTTP polling fallback.
//
// While the push channel is down, the poller fetches the full room snapshot
// and the typing probe on a fixed interval and hands both to a handler. The
// snapshot is a replacement, not a delta, so running it alongside a live
// push channel is safe.
package poller
