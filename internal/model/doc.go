// Package model defines shared data types used across the Team-Chat service.
//
// Conventions:
//   - Timestamps on stored records: time.Time, RFC 3339 in JSON
//   - Timestamps on wire events: int64 milliseconds since Unix epoch
//   - IDs: uuid strings for messages and rooms
package model
