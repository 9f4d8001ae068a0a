package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/refinery/internal/models"
	"github.com/desertthunder/refinery/internal/shared"
)

// Decision is a persisted keep decision: a track the user chose to keep
// during a previous review session.
type Decision struct {
	ID        string
	TrackID   string
	Title     string
	Artist    string
	DecidedAt time.Time
}

// Store persists keep decisions in SQLite so later flag passes can skip
// tracks the user has already vouched for.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the decision database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate decision database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// MarkKept records that the user chose to keep a track. Repeated marks for
// the same track refresh the decision timestamp.
func (s *Store) MarkKept(ctx context.Context, track models.Track) error {
	if track.ID == "" {
		return fmt.Errorf("%w: track has no ID", shared.ErrInvalidArgument)
	}

	query := `INSERT INTO keep_decisions (id, track_id, title, artist, decided_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(track_id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			decided_at = excluded.decided_at`

	_, err := s.db.ExecContext(ctx, query,
		shared.GenerateID(), track.ID, track.Title, track.PrimaryArtist(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record keep decision: %w", err)
	}
	return nil
}

// KeptIDs returns the set of track IDs with a recorded keep decision.
func (s *Store) KeptIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT track_id FROM keep_decisions`)
	if err != nil {
		return nil, fmt.Errorf("failed to load keep decisions: %w", err)
	}
	defer rows.Close()

	kept := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan keep decision: %w", err)
		}
		kept[id] = true
	}

	return kept, rows.Err()
}

// List returns all keep decisions, most recent first.
func (s *Store) List(ctx context.Context) ([]Decision, error) {
	query := `SELECT id, track_id, title, artist, decided_at
		FROM keep_decisions ORDER BY decided_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list keep decisions: %w", err)
	}
	defer rows.Close()

	var decisions []Decision
	for rows.Next() {
		var d Decision
		if err := rows.Scan(&d.ID, &d.TrackID, &d.Title, &d.Artist, &d.DecidedAt); err != nil {
			return nil, fmt.Errorf("failed to scan keep decision: %w", err)
		}
		decisions = append(decisions, d)
	}

	return decisions, rows.Err()
}

// Count returns the number of recorded keep decisions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM keep_decisions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count keep decisions: %w", err)
	}
	return count, nil
}

// Clear deletes all keep decisions and reports how many were removed.
func (s *Store) Clear(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM keep_decisions`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear keep decisions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
