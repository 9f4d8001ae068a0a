package review

import "github.com/desertthunder/refinery/internal/models"

// DefaultCutoffYear is used when the user supplies no cutoff.
const DefaultCutoffYear = 1992

// FilterByYear returns the tracks whose album release year is strictly
// greater than cutoff, preserving playlist order. Tracks with unknown years
// (AlbumYear == 0) are skipped rather than failing the pass; bad metadata
// should not block a review.
func FilterByYear(tracks []models.Track, cutoff int) []models.Track {
	var filtered []models.Track
	for _, t := range tracks {
		if t.AlbumYear == 0 {
			continue
		}
		if t.AlbumYear > cutoff {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
