// package models defines the data model for the playlist curation CLI
package models

import "strconv"

// Track is a snapshot of one playlist entry at fetch time.
//
// Position is the track's index within the playlist when the snapshot was
// taken. Positions are unique and contiguous within one snapshot and are
// invalidated by any deletion; callers must re-fetch before issuing further
// position-based deletions.
type Track struct {
	Position    int      // 0-based index within the snapshot
	URI         string   // stable recording identifier, used as the deletion key
	ID          string   // Spotify track ID, used as the keep-decision key
	Title       string   // display name of the recording
	Artists     []string // ordered artist credits, first entry is the primary artist
	Album       string   // display name of the containing album
	ReleaseDate string   // raw album release date as reported by the service
	AlbumYear   int      // release year parsed from ReleaseDate, 0 when unknown
	DurationMS  int      // track length in milliseconds
}

// PrimaryArtist returns the first-listed artist credit, or an empty string
// when the track carries no artist data.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// Playlist represents playlist metadata from the streaming service.
type Playlist struct {
	ID         string
	Name       string
	OwnerID    string
	TrackCount int
	Public     bool
}

// User represents the authenticated account.
type User struct {
	ID          string
	DisplayName string
}

// Snapshot is the ordered track list of a playlist as fetched at one point
// in time. A snapshot is consumed once any deletion is submitted against it.
type Snapshot struct {
	Playlist Playlist
	Tracks   []Track
}

// ParseReleaseYear extracts the release year from a service-reported date
// string ("2006-01-02", "2006-01", or bare "2006"). Returns 0 when the
// leading four characters are not a plausible year, so malformed metadata
// degrades to "year unknown" instead of failing a review pass.
func ParseReleaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0
	}
	return year
}
