package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/refinery/internal/models"
	"github.com/desertthunder/refinery/internal/shared"
	"github.com/urfave/cli/v3"
)

// Playlists lists Spotify playlists with an optional limit and ownership filter.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	limit := int(cmd.Int("limit"))
	onlyMine := cmd.Bool("mine")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.ensureAuthenticated(ctx, cmd); err != nil {
		return err
	}

	r.logger.Infof("listing spotify playlists with limit %v", limit)

	playlists, err := r.fetchPlaylists(ctx, cmd, onlyMine)
	if err != nil {
		return err
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
		r.writePlain("   Visibility: %s\n", shared.VisibilityString(p.Public))
		r.writePlain("\n")
	}

	return nil
}

// fetchPlaylists lists playlists, retrying once after reauthorization when
// the saved token has expired. With onlyMine set, the listing is filtered to
// playlists the current user owns (the only ones they can remove tracks from).
func (r *Runner) fetchPlaylists(ctx context.Context, cmd *cli.Command, onlyMine bool) ([]models.Playlist, error) {
	playlists, err := r.spotify.GetPlaylists(ctx)
	if err != nil {
		reauthed, authErr := r.handleSpotifyAuthError(ctx, err, cmd)
		if !reauthed {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		if authErr != nil {
			return nil, authErr
		}
		if playlists, err = r.spotify.GetPlaylists(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	if !onlyMine {
		return playlists, nil
	}

	user, err := r.spotify.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	var owned []models.Playlist
	for _, p := range playlists {
		if p.OwnerID == user.ID {
			owned = append(owned, p)
		}
	}
	return owned, nil
}
