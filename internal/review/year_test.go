package review

import (
	"testing"

	"github.com/desertthunder/refinery/internal/models"
)

func TestFilterByYear(t *testing.T) {
	tracks := []models.Track{
		{Position: 0, URI: "u0", Title: "Oldie", AlbumYear: 1985},
		{Position: 1, URI: "u1", Title: "On The Line", AlbumYear: 1992},
		{Position: 2, URI: "u2", Title: "Just After", AlbumYear: 1993},
		{Position: 3, URI: "u3", Title: "Modern", AlbumYear: 2001},
		{Position: 4, URI: "u4", Title: "No Metadata", AlbumYear: 0},
	}

	t.Run("strictly greater than cutoff, unknown years skipped", func(t *testing.T) {
		got := FilterByYear(tracks, 1992)

		if len(got) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(got))
		}
		if got[0].AlbumYear != 1993 || got[1].AlbumYear != 2001 {
			t.Errorf("expected years [1993 2001], got [%d %d]", got[0].AlbumYear, got[1].AlbumYear)
		}
	})

	t.Run("preserves playlist order", func(t *testing.T) {
		got := FilterByYear(tracks, 1980)
		for i := 1; i < len(got); i++ {
			if got[i].Position <= got[i-1].Position {
				t.Errorf("output not in playlist order at index %d", i)
			}
		}
	})

	t.Run("no qualifying tracks", func(t *testing.T) {
		if got := FilterByYear(tracks, 2010); len(got) != 0 {
			t.Errorf("expected empty result, got %d tracks", len(got))
		}
	})

	t.Run("default cutoff year", func(t *testing.T) {
		if DefaultCutoffYear != 1992 {
			t.Errorf("expected default cutoff 1992, got %d", DefaultCutoffYear)
		}
	})
}
