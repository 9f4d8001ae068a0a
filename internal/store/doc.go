// Package store persists per-track keep decisions between review sessions.
// A track the user has explicitly kept is not flagged again until the cache
// is cleared.
package store
