package review

import (
	"reflect"
	"testing"

	"github.com/desertthunder/refinery/internal/models"
)

func snapshotTracks() []models.Track {
	return []models.Track{
		{Position: 0, URI: "spotify:track:a1", ID: "a1", Title: "Yesterday", Artists: []string{"The Beatles"}, Album: "Help!", AlbumYear: 1965, DurationMS: 125000},
		{Position: 1, URI: "spotify:track:b1", ID: "b1", Title: "Let It Be", Artists: []string{"The Beatles"}, Album: "Let It Be", AlbumYear: 1970, DurationMS: 243000},
		{Position: 2, URI: "spotify:track:a2", ID: "a2", Title: "Yesterday - Remastered 2009", Artists: []string{"The Beatles"}, Album: "Help! (Remastered)", AlbumYear: 2009, DurationMS: 126000},
		{Position: 3, URI: "spotify:track:c1", ID: "c1", Title: "Song", Artists: []string{"A"}, Album: "First", AlbumYear: 1990, DurationMS: 200000},
		{Position: 4, URI: "spotify:track:c2", ID: "c2", Title: "Song", Artists: []string{"A", "B"}, Album: "Second", AlbumYear: 1995, DurationMS: 201000},
	}
}

func TestGroupDuplicates(t *testing.T) {
	t.Run("groups remaster with original", func(t *testing.T) {
		groups := GroupDuplicates(snapshotTracks())

		if len(groups) != 2 {
			t.Fatalf("expected 2 groups, got %d", len(groups))
		}

		yesterday := groups[0]
		if len(yesterday.Tracks) != 2 {
			t.Fatalf("expected 2 members in first group, got %d", len(yesterday.Tracks))
		}
		if yesterday.Key.Title != "yesterday" || yesterday.Key.Artist != "the beatles" {
			t.Errorf("unexpected group key: %+v", yesterday.Key)
		}
		if yesterday.Tracks[0].ID != "a1" || yesterday.Tracks[1].ID != "a2" {
			t.Errorf("expected members in playlist order, got %s then %s", yesterday.Tracks[0].ID, yesterday.Tracks[1].ID)
		}

		// "Let It Be" is a singleton and must not appear in any group.
		for _, g := range groups {
			for _, tr := range g.Tracks {
				if tr.ID == "b1" {
					t.Error("singleton track should not be grouped")
				}
			}
		}
	})

	t.Run("featured artist variance groups by primary artist", func(t *testing.T) {
		groups := GroupDuplicates(snapshotTracks())

		song := groups[1]
		if len(song.Tracks) != 2 {
			t.Fatalf("expected featured-artist variants grouped, got %d members", len(song.Tracks))
		}
		if song.Key.Artist != "a" {
			t.Errorf("expected primary artist key a, got %q", song.Key.Artist)
		}
	})

	t.Run("groups partition a subset of the input", func(t *testing.T) {
		tracks := snapshotTracks()
		groups := GroupDuplicates(tracks)

		seen := make(map[int]int)
		for _, g := range groups {
			for _, tr := range g.Tracks {
				seen[tr.Position]++
			}
		}
		for pos, n := range seen {
			if n > 1 {
				t.Errorf("track at position %d appears in %d groups", pos, n)
			}
		}
	})

	t.Run("regrouping the same snapshot is deterministic", func(t *testing.T) {
		tracks := snapshotTracks()
		first := GroupDuplicates(tracks)
		second := GroupDuplicates(tracks)

		if !reflect.DeepEqual(first, second) {
			t.Error("expected identical groups for a no-op review pass")
		}
	})

	t.Run("empty playlist yields no groups", func(t *testing.T) {
		if groups := GroupDuplicates(nil); len(groups) != 0 {
			t.Errorf("expected no groups, got %d", len(groups))
		}
	})

	t.Run("group order follows first appearance", func(t *testing.T) {
		tracks := []models.Track{
			{Position: 0, URI: "u0", Title: "Zebra", Artists: []string{"Z"}},
			{Position: 1, URI: "u1", Title: "Apple", Artists: []string{"A"}},
			{Position: 2, URI: "u2", Title: "Zebra (Remastered)", Artists: []string{"Z"}},
			{Position: 3, URI: "u3", Title: "Apple - Live", Artists: []string{"A"}},
		}
		groups := GroupDuplicates(tracks)
		if len(groups) != 2 {
			t.Fatalf("expected 2 groups, got %d", len(groups))
		}
		if groups[0].Key.Title != "zebra" || groups[1].Key.Title != "apple" {
			t.Errorf("expected first-appearance order zebra then apple, got %q then %q", groups[0].Key.Title, groups[1].Key.Title)
		}
	})
}

func TestAutoCandidates(t *testing.T) {
	t.Run("flags near-identical durations", func(t *testing.T) {
		groups := GroupDuplicates(snapshotTracks())
		candidates := AutoCandidates(groups, DuplicateDurationThresholdMS)

		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(candidates))
		}
		if candidates[0].Remove.ID != "a2" || candidates[0].KeepAs.ID != "a1" {
			t.Errorf("expected a2 removed in favor of a1, got %+v", candidates[0])
		}
	})

	t.Run("respects duration threshold", func(t *testing.T) {
		tracks := []models.Track{
			{Position: 0, URI: "u0", Title: "Song", Artists: []string{"A"}, DurationMS: 200000},
			{Position: 1, URI: "u1", Title: "Song - Live", Artists: []string{"A"}, DurationMS: 290000},
		}
		candidates := AutoCandidates(GroupDuplicates(tracks), DuplicateDurationThresholdMS)
		if len(candidates) != 0 {
			t.Errorf("expected no candidates for a 90s longer live take, got %d", len(candidates))
		}
	})

	t.Run("skips tracks without duration data", func(t *testing.T) {
		tracks := []models.Track{
			{Position: 0, URI: "u0", Title: "Song", Artists: []string{"A"}, DurationMS: 0},
			{Position: 1, URI: "u1", Title: "Song (Remastered)", Artists: []string{"A"}, DurationMS: 200000},
		}
		candidates := AutoCandidates(GroupDuplicates(tracks), DuplicateDurationThresholdMS)
		if len(candidates) != 0 {
			t.Errorf("expected no candidates when base duration is unknown, got %d", len(candidates))
		}
	})
}
