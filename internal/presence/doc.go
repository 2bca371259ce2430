// Package presence tracks per-room online users and typing indicators.
//
// Presence is best-effort: joins and leaves are idempotent, leave may never
// arrive (ghost presence is accepted), and typing entries expire passively
// during the next query rather than on a timer.
package presence
