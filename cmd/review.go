package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/refinery/internal/formatter"
	"github.com/desertthunder/refinery/internal/models"
	"github.com/desertthunder/refinery/internal/prompt"
	"github.com/desertthunder/refinery/internal/review"
	"github.com/desertthunder/refinery/internal/shared"
	"github.com/urfave/cli/v3"
)

// reviewMode selects which review passes run.
type reviewMode int

const (
	reviewAll reviewMode = iota
	reviewDuplicates
	reviewYear
)

// reviewSession accumulates confirmed selections during a review. Nothing is
// sent to Spotify until the final confirmation.
type reviewSession struct {
	set     *review.RemovalSet
	entries []formatter.Entry
}

func newReviewSession() *reviewSession {
	return &reviewSession{set: review.NewRemovalSet()}
}

// add marks a track occurrence for removal, recording the reason for the
// summary and the report. Duplicate occurrences are ignored.
func (s *reviewSession) add(track models.Track, reason string) {
	if s.set.Add(track) {
		s.entries = append(s.entries, formatter.Entry{Track: track, Reason: reason})
	}
}

// selected reports whether an occurrence at the given playlist position is
// already marked.
func (s *reviewSession) selected(position int) bool {
	for _, entry := range s.entries {
		if entry.Track.Position == position {
			return true
		}
	}
	return false
}

func (r *Runner) reviewAction(mode reviewMode) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		err := r.Review(ctx, cmd, mode)
		if errors.Is(err, shared.ErrQuit) {
			r.writePlainln("Review ended. No changes were made.")
			return nil
		}
		return err
	}
}

// Review runs the interactive review flow: pick a playlist, walk the
// requested passes, summarize, confirm, and only then delete.
func (r *Runner) Review(ctx context.Context, cmd *cli.Command, mode reviewMode) error {
	if err := r.ensureAuthenticated(ctx, cmd); err != nil {
		return err
	}

	playlistID := cmd.String("id")
	if playlistID == "" {
		picked, err := r.pickPlaylist(ctx, cmd)
		if err != nil {
			return err
		}
		playlistID = picked
	}

	snapshot, err := r.fetchSnapshot(ctx, cmd, playlistID)
	if err != nil {
		return err
	}

	r.logger.Infof("reviewing playlist %q with %d tracks", snapshot.Playlist.Name, len(snapshot.Tracks))
	r.writePlainln("Reviewing %q (%d tracks)", snapshot.Playlist.Name, len(snapshot.Tracks))

	session := newReviewSession()

	if mode == reviewAll || mode == reviewDuplicates {
		if err := r.duplicatePass(snapshot, session); err != nil {
			return err
		}
	}

	if mode == reviewAll || mode == reviewYear {
		cutoff, err := r.resolveCutoff(cmd)
		if err != nil {
			return err
		}
		if err := r.yearPass(ctx, snapshot, session, cutoff); err != nil {
			return err
		}
	}

	return r.finishReview(ctx, cmd, snapshot, session)
}

// pickPlaylist presents the user's own playlists (the only ones they can
// delete from) and returns the chosen ID.
func (r *Runner) pickPlaylist(ctx context.Context, cmd *cli.Command) (string, error) {
	playlists, err := r.fetchPlaylists(ctx, cmd, true)
	if err != nil {
		return "", err
	}
	if len(playlists) == 0 {
		return "", fmt.Errorf("%w: no playlists owned by the current user", shared.ErrPlaylistNotFound)
	}

	options := make([]string, len(playlists))
	for i, p := range playlists {
		options[i] = fmt.Sprintf("%s (%d tracks)", p.Name, p.TrackCount)
	}

	idx, err := r.prompter.Choose("Which playlist do you want to review?", options)
	if err != nil {
		return "", err
	}
	return playlists[idx].ID, nil
}

// fetchSnapshot retrieves a playlist snapshot, retrying once after
// reauthorization when the saved token has expired.
func (r *Runner) fetchSnapshot(ctx context.Context, cmd *cli.Command, playlistID string) (*models.Snapshot, error) {
	snapshot, err := r.spotify.GetPlaylistSnapshot(ctx, playlistID)
	if err != nil {
		reauthed, authErr := r.handleSpotifyAuthError(ctx, err, cmd)
		if !reauthed {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		if authErr != nil {
			return nil, authErr
		}
		if snapshot, err = r.spotify.GetPlaylistSnapshot(ctx, playlistID); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}
	return snapshot, nil
}

// resolveCutoff picks the album-year cutoff: the --cutoff flag wins, then
// the user is prompted with the configured default.
func (r *Runner) resolveCutoff(cmd *cli.Command) (int, error) {
	if flagCutoff := int(cmd.Int("cutoff")); flagCutoff > 0 {
		if flagCutoff < prompt.MinPlausibleYear || flagCutoff > prompt.MaxPlausibleYear {
			return 0, fmt.Errorf("%w: cutoff year %d out of range %d-%d",
				shared.ErrInvalidArgument, flagCutoff, prompt.MinPlausibleYear, prompt.MaxPlausibleYear)
		}
		return flagCutoff, nil
	}

	fallback := r.config.Review.CutoffYear
	if fallback <= 0 {
		fallback = review.DefaultCutoffYear
	}
	return r.prompter.Year("Album-year cutoff (tracks released after it are flagged)", fallback)
}

func describeTrack(track models.Track) string {
	desc := fmt.Sprintf("%q by %s", track.Title, track.PrimaryArtist())
	if track.AlbumYear > 0 {
		desc = fmt.Sprintf("%s (%d)", desc, track.AlbumYear)
	}
	return fmt.Sprintf("%s [%s]", desc, shared.FormatDuration(track.DurationMS))
}

// duplicatePass groups likely duplicate recordings and resolves each group:
// near-identical copies (same key, near-equal duration) are offered as a
// batch, everything else goes through per-group member selection.
func (r *Runner) duplicatePass(snapshot *models.Snapshot, session *reviewSession) error {
	groups := review.GroupDuplicates(snapshot.Tracks)
	if len(groups) == 0 {
		r.writePlainln("No likely duplicates found.")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Duplicate review: %d group(s)", len(groups)))

	if err := r.autoCleanup(groups, session); err != nil {
		return err
	}

	for i, group := range groups {
		var remaining []models.Track
		for _, track := range group.Tracks {
			if !session.selected(track.Position) {
				remaining = append(remaining, track)
			}
		}
		if len(remaining) < 2 {
			continue
		}

		r.writePlainln("Group %d of %d: %q by %s", i+1, len(groups), group.Key.Title, group.Key.Artist)
		for j, track := range remaining {
			r.writePlain("%2d. %s\n", j+1, describeTrack(track))
		}

		picks, err := r.prompter.PickMembers("Which versions do you want?", len(remaining))
		if err != nil {
			return err
		}

		for _, idx := range picks.Removals(len(remaining)) {
			track := remaining[idx-1]
			session.add(track, fmt.Sprintf("duplicate of %q", group.Key.Title))
		}
	}

	return nil
}

// autoCleanup offers the near-identical copies (duration within the
// threshold of the group's first version) as one batch, with optional
// exclusions.
func (r *Runner) autoCleanup(groups []review.Group, session *reviewSession) error {
	candidates := review.AutoCandidates(groups, review.DuplicateDurationThresholdMS)
	if len(candidates) == 0 {
		return nil
	}

	r.writePlainln("%d near-identical cop(ies) found:", len(candidates))
	for i, c := range candidates {
		r.writePlain("%2d. %s\n    copy of %s\n", i+1, describeTrack(c.Remove), describeTrack(c.KeepAs))
	}

	ok, err := r.prompter.Confirm(fmt.Sprintf("Mark all %d for removal?", len(candidates)))
	if err != nil {
		return err
	}

	if ok {
		for _, c := range candidates {
			session.add(c.Remove, fmt.Sprintf("near-identical copy of %q", c.KeepAs.Title))
		}
		return nil
	}

	for {
		raw, err := r.prompter.Ask("Numbers to mark anyway (e.g. 1,3; empty = none)", "")
		if err != nil {
			return err
		}
		if raw == "" {
			return nil
		}

		indexes, err := prompt.ParseIndexes(raw, len(candidates))
		if err != nil {
			r.writePlain("Invalid selection: %v\n", err)
			continue
		}
		for _, idx := range indexes {
			c := candidates[idx-1]
			session.add(c.Remove, fmt.Sprintf("near-identical copy of %q", c.KeepAs.Title))
		}
		return nil
	}
}

// yearPass walks tracks whose album year exceeds the cutoff, skipping
// occurrences already marked and tracks the user kept in earlier sessions.
func (r *Runner) yearPass(ctx context.Context, snapshot *models.Snapshot, session *reviewSession, cutoff int) error {
	flagged := review.FilterByYear(snapshot.Tracks, cutoff)
	if len(flagged) == 0 {
		r.writePlainln("No tracks released after %d.", cutoff)
		return nil
	}

	kept := map[string]bool{}
	decisions, err := r.openDecisions()
	if err != nil {
		r.logger.Warnf("decision cache unavailable: %v", err)
	} else if kept, err = decisions.KeptIDs(ctx); err != nil {
		r.logger.Warnf("failed to load keep decisions: %v", err)
		kept = map[string]bool{}
	}

	var pending []models.Track
	keptSkipped := 0
	for _, track := range flagged {
		if session.selected(track.Position) {
			continue
		}
		if kept[track.ID] {
			keptSkipped++
			r.logger.Debugf("skipping previously kept track %q", track.Title)
			continue
		}
		pending = append(pending, track)
	}

	if keptSkipped > 0 {
		r.writePlainln("Skipping %d track(s) you kept in earlier sessions.", keptSkipped)
	}
	if len(pending) == 0 {
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Year review: %d track(s) after %d", len(pending), cutoff))

	for _, track := range pending {
		decision, err := r.prompter.Decide(fmt.Sprintf("Delete %s?", describeTrack(track)))
		if err != nil {
			return err
		}

		if decision == prompt.DecisionDelete {
			session.add(track, fmt.Sprintf("album year %d is after %d", track.AlbumYear, cutoff))
			continue
		}

		if r.decisions != nil {
			if err := r.decisions.MarkKept(ctx, track); err != nil {
				r.logger.Warnf("failed to record keep decision: %v", err)
			}
		}
	}

	return nil
}

// finishReview summarizes the session, asks for the final confirmation, and
// submits the removals. Declining leaves the playlist untouched.
func (r *Runner) finishReview(ctx context.Context, cmd *cli.Command, snapshot *models.Snapshot, session *reviewSession) error {
	if session.set.Empty() {
		r.writePlainln("Nothing selected for removal. Playlist untouched.")
		return nil
	}

	r.writePlainHeader("Removal summary")
	for i, entry := range session.entries {
		r.writePlain("%2d. %s\n    %s\n", i+1, describeTrack(entry.Track), entry.Reason)
	}

	ok, err := r.prompter.Confirm(fmt.Sprintf("Permanently remove %d track(s) from %q?", session.set.Len(), snapshot.Playlist.Name))
	if err != nil {
		return err
	}
	if !ok {
		r.writePlainln("No changes made.")
		return nil
	}

	removals := session.set.Items()
	if err := r.spotify.RemoveTracks(ctx, snapshot.Playlist.ID, removals); err != nil {
		reauthed, authErr := r.handleSpotifyAuthError(ctx, err, cmd)
		if !reauthed {
			return fmt.Errorf("failed to remove tracks: %w", err)
		}
		if authErr != nil {
			return authErr
		}
		if err := r.spotify.RemoveTracks(ctx, snapshot.Playlist.ID, removals); err != nil {
			return fmt.Errorf("failed to remove tracks: %w", err)
		}
	}

	r.logger.Infof("removed %d occurrence(s) from %q", len(removals), snapshot.Playlist.Name)
	r.writePlainln("✓ Removed %d track(s)", session.set.Len())

	if updated, err := r.spotify.GetPlaylistSnapshot(ctx, snapshot.Playlist.ID); err != nil {
		r.logger.Warnf("failed to re-fetch playlist: %v", err)
	} else {
		r.writePlain("Playlist %q now has %d tracks.\n", updated.Playlist.Name, len(updated.Tracks))
	}

	if reportPath := cmd.String("report"); reportPath != "" {
		report := &formatter.Report{
			Playlist:    snapshot.Playlist,
			Removed:     session.entries,
			GeneratedAt: time.Now(),
		}
		written, err := formatter.WriteReport(report, reportPath)
		if err != nil {
			return err
		}
		r.writePlain("Report written to %s\n", written)
	}

	return nil
}
