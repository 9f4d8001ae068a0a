// package testing contains shared testing utilities
package testing

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/desertthunder/refinery/internal/models"
	"github.com/desertthunder/refinery/internal/prompt"
	"github.com/desertthunder/refinery/internal/review"
	"github.com/desertthunder/refinery/internal/shared"
)

// RemovalCall records one RemoveTracks invocation on a [MockService].
type RemovalCall struct {
	PlaylistID string
	Removals   []review.Removal
}

// MockService is a canned test double for [services.Service]. Populate the
// exported fields and inspect Calls after the flow under test runs.
type MockService struct {
	User      *models.User
	Playlists []models.Playlist
	Snapshots map[string]*models.Snapshot

	AuthErr   error
	RemoveErr error

	AuthCalls int
	Calls     []RemovalCall
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	m.AuthCalls++
	return m.AuthErr
}

func (m *MockService) CurrentUser(ctx context.Context) (*models.User, error) {
	if m.User == nil {
		return &models.User{ID: "mock_user", DisplayName: "Mock User"}, nil
	}
	return m.User, nil
}

func (m *MockService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	return m.Playlists, nil
}

func (m *MockService) GetPlaylistSnapshot(ctx context.Context, playlistID string) (*models.Snapshot, error) {
	snapshot, ok := m.Snapshots[playlistID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	return snapshot, nil
}

func (m *MockService) RemoveTracks(ctx context.Context, playlistID string, removals []review.Removal) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.Calls = append(m.Calls, RemovalCall{PlaylistID: playlistID, Removals: removals})

	// Mimic the live service: drop removed occurrences from the snapshot so
	// a re-fetch after deletion sees the curated playlist.
	if snapshot, ok := m.Snapshots[playlistID]; ok {
		removed := make(map[int]bool, len(removals))
		for _, r := range removals {
			removed[r.Position] = true
		}
		var remaining []models.Track
		for _, track := range snapshot.Tracks {
			if !removed[track.Position] {
				remaining = append(remaining, track)
			}
		}
		snapshot.Tracks = remaining
		snapshot.Playlist.TrackCount = len(remaining)
	}
	return nil
}

func (m *MockService) Name() string { return "mock" }

// ScriptPrompter is a test double for [prompt.Prompter] that replays
// pre-seeded answers in FIFO order. Exhausting a queue fails the flow the
// same way closed stdin would.
type ScriptPrompter struct {
	Choices   []int
	Answers   []string
	Confirms  []bool
	Decisions []prompt.Decision
	Picks     []prompt.Picks
	Years     []int
}

func (p *ScriptPrompter) Choose(title string, options []string) (int, error) {
	if len(p.Choices) == 0 {
		return 0, shared.ErrQuit
	}
	choice := p.Choices[0]
	p.Choices = p.Choices[1:]
	return choice, nil
}

func (p *ScriptPrompter) Ask(question, fallback string) (string, error) {
	if len(p.Answers) == 0 {
		return fallback, nil
	}
	answer := p.Answers[0]
	p.Answers = p.Answers[1:]
	return answer, nil
}

func (p *ScriptPrompter) Confirm(question string) (bool, error) {
	if len(p.Confirms) == 0 {
		return false, nil
	}
	ok := p.Confirms[0]
	p.Confirms = p.Confirms[1:]
	return ok, nil
}

func (p *ScriptPrompter) Decide(question string) (prompt.Decision, error) {
	if len(p.Decisions) == 0 {
		return prompt.DecisionKeep, shared.ErrQuit
	}
	decision := p.Decisions[0]
	p.Decisions = p.Decisions[1:]
	return decision, nil
}

func (p *ScriptPrompter) PickMembers(question string, size int) (prompt.Picks, error) {
	if len(p.Picks) == 0 {
		return prompt.Picks{}, shared.ErrQuit
	}
	picks := p.Picks[0]
	p.Picks = p.Picks[1:]
	return picks, nil
}

func (p *ScriptPrompter) Year(question string, fallback int) (int, error) {
	if len(p.Years) == 0 {
		return fallback, nil
	}
	year := p.Years[0]
	p.Years = p.Years[1:]
	return year, nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
