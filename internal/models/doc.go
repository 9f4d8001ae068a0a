// Package models defines the domain entities shared across the refinery CLI.
//
// The package contains lightweight DTOs representing external service data:
//   - [Playlist] : playlist metadata (id, name, owner, track count)
//   - [Track] : one playlist entry as of a snapshot, with its position
//   - [Snapshot] : the ordered track list fetched at one point in time
//   - [User] : the authenticated account
//
// Tracks live only for the duration of one review pass. A [Snapshot] is
// invalidated by any deletion submitted against it; review passes re-fetch
// before acting on positions again.
package models
