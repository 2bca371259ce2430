// Package chat composes the store, hub, presence tracker, and content
// transform into the room-level operations exposed over HTTP.
//
// Private-room content is sealed at rest and revealed on every read path;
// broadcast payloads always carry revealed content. A transform failure
// degrades to a placeholder string and never aborts a read.
package chat
