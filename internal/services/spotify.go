// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/refinery/internal/models"
	"github.com/desertthunder/refinery/internal/review"
	"github.com/desertthunder/refinery/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// DefaultRedirectURI matches the callback route served by internal/server.
	DefaultRedirectURI = "http://localhost:3000/callback"

	pageLimit = 50
	// trackPageLimit is the maximum page size for playlist items.
	trackPageLimit = 100
)

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Country     string    `json:"country"`
	Followers   followers `json:"followers"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	// ReleaseDatePrecision is "year", "month", or "day".
	ReleaseDatePrecision string `json:"release_date_precision"`
	URI                  string `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	IsLocal    bool            `json:"is_local"`
	URI        string          `json:"uri"`
}

type owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type trackRef struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Owner       owner    `json:"owner"`
	Public      bool     `json:"public"`
	Tracks      trackRef `json:"tracks"`
	URI         string   `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifySimplePlaylist `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Next   *string                 `json:"next"`
}

// SpotifyPlaylistTrack represents a track within a playlist context. Track is
// a pointer because Spotify returns null items for removed content.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	IsLocal bool          `json:"is_local"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylistTracks represents one page of a playlist's items.
type SpotifyPaginatedPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// spotifyRemoval is one entry of a track-removal payload: a URI plus the
// playlist positions to delete it from.
type spotifyRemoval struct {
	URI       string `json:"uri"`
	Positions []int  `json:"positions"`
}

type removalPayload struct {
	Tracks []spotifyRemoval `json:"tracks"`
}

// SpotifyService implements [OAuthService] against the Spotify Web API.
// Requests share a client-side rate limiter so long review sessions stay
// under Spotify's rolling request window.
type SpotifyService struct {
	config      *oauth2.Config
	token       *oauth2.Token
	httpClient  *http.Client
	limiter     *rate.Limiter
	credentials map[string]string
	baseURL     string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"playlist-read-private",
			"playlist-read-collaborative",
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:      config,
		httpClient:  http.DefaultClient,
		limiter:     rate.NewLimiter(rate.Limit(10), 5),
		credentials: credentials,
		baseURL:     spotifyBaseURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate establishes a session. Expects either an "access_token"
// (with optional "refresh_token" and RFC 3339 "token_expiry") or an
// "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		token := &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
		}
		if expiry, err := time.Parse(time.RFC3339, credentials["token_expiry"]); err == nil {
			token.Expiry = expiry
		}
		return s.OAuthenticate(ctx, token)
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate establishes a session from an exchanged token. The wrapped
// client refreshes the token transparently when a refresh token is present.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidCredentials)
	}
	s.token = token
	s.httpClient = s.config.Client(ctx, token)
	return nil
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the OAuth2 configuration for the callback server.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// Token returns the current session token, or nil before authentication.
func (s *SpotifyService) Token() *oauth2.Token {
	return s.token
}

// doRequest performs an authenticated, rate-limited request against the
// Spotify API, marshaling body (when non-nil) and decoding into result.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: spotify returned 401", shared.ErrTokenExpired)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, endpoint)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d for %s %s", shared.ErrAPIRequest, resp.StatusCode, method, endpoint)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// CurrentUser retrieves the authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*models.User, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &models.User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// GetPlaylists retrieves all playlists for the authenticated user, walking
// the paginated listing to completion.
func (s *SpotifyService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", pageLimit, offset)

		var page SpotifyPaginatedPlaylists
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, sp := range page.Items {
			playlists = append(playlists, models.Playlist{
				ID:         sp.ID,
				Name:       sp.Name,
				OwnerID:    sp.Owner.ID,
				TrackCount: sp.Tracks.Total,
				Public:     sp.Public,
			})
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += pageLimit
	}

	return playlists, nil
}

// playlistMeta is the trimmed playlist response requested via fields=.
type playlistMeta struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Owner  owner    `json:"owner"`
	Public bool     `json:"public"`
	Tracks trackRef `json:"tracks"`
}

// GetPlaylistSnapshot retrieves a playlist and its complete track listing.
// Positions index the playlist as Spotify stores it, so unplayable entries
// (null or local tracks) are skipped but still advance the position counter.
func (s *SpotifyService) GetPlaylistSnapshot(ctx context.Context, playlistID string) (*models.Snapshot, error) {
	metaEndpoint := fmt.Sprintf("/playlists/%s?fields=%s",
		url.PathEscape(playlistID),
		url.QueryEscape("id,name,public,owner(id,display_name),tracks(total)"))

	var meta playlistMeta
	if err := s.doRequest(ctx, http.MethodGet, metaEndpoint, nil, &meta); err != nil {
		return nil, err
	}

	snapshot := &models.Snapshot{
		Playlist: models.Playlist{
			ID:         meta.ID,
			Name:       meta.Name,
			OwnerID:    meta.Owner.ID,
			TrackCount: meta.Tracks.Total,
			Public:     meta.Public,
		},
	}

	offset := 0
	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d",
			url.PathEscape(playlistID), trackPageLimit, offset)

		var page SpotifyPaginatedPlaylistTracks
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for i, item := range page.Items {
			if item.Track == nil || item.Track.URI == "" || item.IsLocal || item.Track.IsLocal {
				continue
			}

			track := models.Track{
				Position:    offset + i,
				URI:         item.Track.URI,
				ID:          item.Track.ID,
				Title:       item.Track.Name,
				Album:       item.Track.Album.Name,
				ReleaseDate: item.Track.Album.ReleaseDate,
				AlbumYear:   models.ParseReleaseYear(item.Track.Album.ReleaseDate),
				DurationMS:  item.Track.DurationMS,
			}
			for _, artist := range item.Track.Artists {
				track.Artists = append(track.Artists, artist.Name)
			}

			snapshot.Tracks = append(snapshot.Tracks, track)
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += trackPageLimit
	}

	return snapshot, nil
}

// RemoveTracks deletes the given occurrences from a playlist. Removals for
// the same URI are merged into one entry with multiple positions, and the
// payload is split into batches of at most [review.MaxRemovalsPerRequest]
// track entries.
func (s *SpotifyService) RemoveTracks(ctx context.Context, playlistID string, removals []review.Removal) error {
	if len(removals) == 0 {
		return nil
	}

	byURI := make(map[string]*spotifyRemoval)
	var order []string
	for _, r := range removals {
		entry, ok := byURI[r.URI]
		if !ok {
			entry = &spotifyRemoval{URI: r.URI}
			byURI[r.URI] = entry
			order = append(order, r.URI)
		}
		entry.Positions = append(entry.Positions, r.Position)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	for start := 0; start < len(order); start += review.MaxRemovalsPerRequest {
		end := start + review.MaxRemovalsPerRequest
		if end > len(order) {
			end = len(order)
		}

		payload := removalPayload{}
		for _, uri := range order[start:end] {
			payload.Tracks = append(payload.Tracks, *byURI[uri])
		}

		if err := s.doRequest(ctx, http.MethodDelete, endpoint, payload, nil); err != nil {
			return fmt.Errorf("failed to remove tracks: %w", err)
		}
	}

	return nil
}
