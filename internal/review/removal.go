package review

import (
	"sort"

	"github.com/desertthunder/refinery/internal/models"
)

// MaxRemovalsPerRequest is the Spotify API limit on items per delete call.
const MaxRemovalsPerRequest = 100

// Removal targets one specific occurrence of a track for deletion: the URI
// identifies the recording and Position pins the occurrence within the
// snapshot, so other occurrences of the same URI are untouched.
type Removal struct {
	URI      string
	ID       string
	Position int
}

// RemovalSet accumulates deletion decisions across a review pass. Entries
// are deduplicated by (URI, Position). Nothing in a set is submitted to the
// service until the caller obtains final confirmation; a declined
// confirmation discards the set with no partial deletions issued.
type RemovalSet struct {
	removals []Removal
	seen     map[Removal]bool
}

// NewRemovalSet creates an empty removal set.
func NewRemovalSet() *RemovalSet {
	return &RemovalSet{seen: make(map[Removal]bool)}
}

// Add records a track occurrence for deletion. Tracks without a URI (local
// or otherwise unsupported entries) are ignored and reported as skipped.
func (s *RemovalSet) Add(t models.Track) bool {
	if t.URI == "" {
		return false
	}
	r := Removal{URI: t.URI, ID: t.ID, Position: t.Position}
	if s.seen[r] {
		return true
	}
	s.seen[r] = true
	s.removals = append(s.removals, r)
	return true
}

// Len returns the number of distinct occurrences marked for deletion.
func (s *RemovalSet) Len() int { return len(s.removals) }

// Empty reports whether no occurrences were marked.
func (s *RemovalSet) Empty() bool { return len(s.removals) == 0 }

// Items returns the removals ordered by snapshot position.
func (s *RemovalSet) Items() []Removal {
	items := make([]Removal, len(s.removals))
	copy(items, s.removals)
	sort.Slice(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})
	return items
}
