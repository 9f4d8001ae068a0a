package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/desertthunder/refinery/internal/models"
	"github.com/desertthunder/refinery/internal/shared"
)

func openStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "refinery_test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	track := models.Track{
		ID:      "t1",
		Title:   "Yesterday",
		Artists: []string{"The Beatles"},
	}

	t.Run("MarkKept And KeptIDs", func(t *testing.T) {
		s := openStore(t)

		if err := s.MarkKept(ctx, track); err != nil {
			t.Fatalf("MarkKept returned error: %v", err)
		}

		kept, err := s.KeptIDs(ctx)
		if err != nil {
			t.Fatalf("KeptIDs returned error: %v", err)
		}
		if !kept["t1"] {
			t.Error("expected t1 to be kept")
		}
		if kept["t2"] {
			t.Error("did not expect t2 to be kept")
		}
	})

	t.Run("MarkKept Is Idempotent", func(t *testing.T) {
		s := openStore(t)

		for i := 0; i < 3; i++ {
			if err := s.MarkKept(ctx, track); err != nil {
				t.Fatalf("MarkKept returned error: %v", err)
			}
		}

		count, err := s.Count(ctx)
		if err != nil {
			t.Fatalf("Count returned error: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 decision, got %d", count)
		}
	})

	t.Run("MarkKept Rejects Empty ID", func(t *testing.T) {
		s := openStore(t)

		err := s.MarkKept(ctx, models.Track{Title: "No ID"})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		s := openStore(t)

		if err := s.MarkKept(ctx, track); err != nil {
			t.Fatalf("MarkKept returned error: %v", err)
		}

		decisions, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if len(decisions) != 1 {
			t.Fatalf("expected 1 decision, got %d", len(decisions))
		}

		d := decisions[0]
		if d.TrackID != "t1" || d.Title != "Yesterday" || d.Artist != "The Beatles" {
			t.Errorf("unexpected decision: %+v", d)
		}
		if d.DecidedAt.IsZero() {
			t.Error("expected decided_at to be set")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		s := openStore(t)

		if err := s.MarkKept(ctx, track); err != nil {
			t.Fatalf("MarkKept returned error: %v", err)
		}
		if err := s.MarkKept(ctx, models.Track{ID: "t2", Title: "Let It Be"}); err != nil {
			t.Fatalf("MarkKept returned error: %v", err)
		}

		removed, err := s.Clear(ctx)
		if err != nil {
			t.Fatalf("Clear returned error: %v", err)
		}
		if removed != 2 {
			t.Errorf("expected 2 removed, got %d", removed)
		}

		count, err := s.Count(ctx)
		if err != nil {
			t.Fatalf("Count returned error: %v", err)
		}
		if count != 0 {
			t.Errorf("expected empty cache, got %d", count)
		}
	})
}
