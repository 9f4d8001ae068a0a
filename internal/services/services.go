// package services defines the Service contract for the playlist providers
// the review flows operate on.
package services

import (
	"context"

	"github.com/desertthunder/refinery/internal/models"
	"github.com/desertthunder/refinery/internal/review"
	"golang.org/x/oauth2"
)

// Service is a playlist provider: it authenticates a user, lists their
// playlists, snapshots playlist contents, and removes tracks by occurrence.
type Service interface {
	// Authenticate establishes an API session. Accepts either a stored
	// "access_token" (plus optional "refresh_token" and "token_expiry")
	// or an "auth_code" fresh from the OAuth callback.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// CurrentUser retrieves the authenticated user's profile.
	CurrentUser(ctx context.Context) (*models.User, error)

	// GetPlaylists retrieves all playlists visible to the authenticated user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// GetPlaylistSnapshot retrieves a playlist and its full track listing,
	// with positions matching the playlist order at fetch time.
	GetPlaylistSnapshot(ctx context.Context, playlistID string) (*models.Snapshot, error)

	// RemoveTracks deletes the given track occurrences from a playlist.
	RemoveTracks(ctx context.Context, playlistID string, removals []review.Removal) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService is implemented by services that authenticate through an
// OAuth2 authorization-code flow with a local callback server.
type OAuthService interface {
	Service

	// GetAuthURL returns the authorization URL for user login.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying OAuth2 configuration for the
	// callback server's code exchange.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate establishes a session from an exchanged token.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}
