package review

import (
	"testing"

	"github.com/desertthunder/refinery/internal/models"
)

func TestRemovalSet(t *testing.T) {
	t.Run("deduplicates occurrences", func(t *testing.T) {
		s := NewRemovalSet()
		track := models.Track{Position: 3, URI: "spotify:track:x", ID: "x"}

		if !s.Add(track) {
			t.Fatal("expected track with URI to be accepted")
		}
		s.Add(track)

		if s.Len() != 1 {
			t.Errorf("expected 1 removal after duplicate add, got %d", s.Len())
		}
	})

	t.Run("distinct occurrences of the same uri are kept", func(t *testing.T) {
		s := NewRemovalSet()
		s.Add(models.Track{Position: 3, URI: "spotify:track:x", ID: "x"})
		s.Add(models.Track{Position: 9, URI: "spotify:track:x", ID: "x"})

		if s.Len() != 2 {
			t.Errorf("expected 2 removals, got %d", s.Len())
		}
	})

	t.Run("rejects tracks without a uri", func(t *testing.T) {
		s := NewRemovalSet()
		if s.Add(models.Track{Position: 0}) {
			t.Error("expected local track without URI to be rejected")
		}
		if !s.Empty() {
			t.Error("expected set to remain empty")
		}
	})

	t.Run("items are ordered by position", func(t *testing.T) {
		s := NewRemovalSet()
		s.Add(models.Track{Position: 9, URI: "u9"})
		s.Add(models.Track{Position: 1, URI: "u1"})
		s.Add(models.Track{Position: 5, URI: "u5"})

		items := s.Items()
		for i := 1; i < len(items); i++ {
			if items[i].Position < items[i-1].Position {
				t.Fatalf("items out of order: %v", items)
			}
		}
	})
}
