// Package store provides durable storage for messages and rooms.
//
// Two backends implement the same interfaces:
//   - memory: process-local maps, default backend, caps history per room
//   - postgres: pgx connection pool, reactions stored as JSONB
//
// The broadcast layer treats the store as an external collaborator; nothing
// here knows about connections or events.
package store
