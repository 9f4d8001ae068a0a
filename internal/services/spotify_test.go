package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/refinery/internal/models"
	"github.com/desertthunder/refinery/internal/review"
	"github.com/desertthunder/refinery/internal/shared"
	"golang.org/x/oauth2"
)

func testCredentials() map[string]string {
	return map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	}
}

// newTestService returns an authenticated service pointed at a local server.
func newTestService(t *testing.T, handler http.Handler) (*SpotifyService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := NewSpotifyService(testCredentials())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	srv.baseURL = server.URL
	srv.token = &oauth2.Token{AccessToken: "test_access_token"}
	srv.httpClient = server.Client()

	return srv, server
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "x"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "x"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.config.RedirectURL != DefaultRedirectURI {
				t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials())
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")
		if !strings.Contains(authURL, "accounts.spotify.com") {
			t.Error("auth URL should contain Spotify domain")
		}
		if !strings.Contains(authURL, "test_client_id") {
			t.Error("auth URL should contain client_id")
		}
		if !strings.Contains(authURL, "test_state") {
			t.Error("auth URL should contain state")
		}
		if !strings.Contains(authURL, "playlist-modify") {
			t.Error("auth URL should request modify scopes")
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials())
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("With Access Token", func(t *testing.T) {
			creds := map[string]string{
				"access_token":  "test_access_token",
				"refresh_token": "test_refresh_token",
			}
			if err := srv.Authenticate(context.Background(), creds); err != nil {
				t.Errorf("expected no error with access token, got %v", err)
			}
			if srv.Token() == nil || srv.Token().RefreshToken != "test_refresh_token" {
				t.Error("expected refresh token to be carried into the session")
			}
		})

		t.Run("Without Credentials", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("Requires Authentication", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials())
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		if _, err := srv.CurrentUser(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestSpotifyServiceCurrentUser(t *testing.T) {
	srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test_access_token" {
			t.Errorf("unexpected auth header %q", got)
		}
		json.NewEncoder(w).Encode(SpotifyUser{ID: "user1", DisplayName: "Test User"})
	}))

	user, err := srv.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser returned error: %v", err)
	}
	if user.ID != "user1" || user.DisplayName != "Test User" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestSpotifyServiceGetPlaylists(t *testing.T) {
	t.Run("Walks Pagination", func(t *testing.T) {
		var srv *SpotifyService
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			offset := r.URL.Query().Get("offset")
			page := SpotifyPaginatedPlaylists{Total: 51}
			if offset == "0" {
				for i := 0; i < 50; i++ {
					page.Items = append(page.Items, SpotifySimplePlaylist{
						ID:    fmt.Sprintf("p%d", i),
						Name:  fmt.Sprintf("Playlist %d", i),
						Owner: owner{ID: "user1"},
					})
				}
				next := "more"
				page.Next = &next
			} else {
				page.Items = []SpotifySimplePlaylist{{ID: "p50", Name: "Playlist 50", Owner: owner{ID: "user1"}}}
			}
			json.NewEncoder(w).Encode(page)
		})
		srv, _ = newTestService(t, handler)

		playlists, err := srv.GetPlaylists(context.Background())
		if err != nil {
			t.Fatalf("GetPlaylists returned error: %v", err)
		}
		if len(playlists) != 51 {
			t.Fatalf("expected 51 playlists, got %d", len(playlists))
		}
		if playlists[50].ID != "p50" {
			t.Errorf("expected last playlist p50, got %s", playlists[50].ID)
		}
		if playlists[0].OwnerID != "user1" {
			t.Errorf("expected owner user1, got %s", playlists[0].OwnerID)
		}
	})

	t.Run("Expired Token", func(t *testing.T) {
		srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := srv.GetPlaylists(context.Background())
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})
}

func TestSpotifyServiceGetPlaylistSnapshot(t *testing.T) {
	makeTrack := func(id, name, release string, durationMS int) *SpotifyTrack {
		return &SpotifyTrack{
			ID:         id,
			Name:       name,
			URI:        "spotify:track:" + id,
			Artists:    []SpotifyArtist{{Name: "Artist A"}, {Name: "Artist B"}},
			Album:      SpotifyAlbum{Name: "Album", ReleaseDate: release},
			DurationMS: durationMS,
		}
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/playlists/pl1":
			json.NewEncoder(w).Encode(playlistMeta{
				ID:     "pl1",
				Name:   "Road Trip",
				Owner:  owner{ID: "user1"},
				Tracks: trackRef{Total: 3},
			})
		case r.URL.Path == "/playlists/pl1/tracks":
			page := SpotifyPaginatedPlaylistTracks{
				Total: 3,
				Items: []SpotifyPlaylistTrack{
					{Track: makeTrack("t1", "Yesterday", "1965-08-06", 125000)},
					{Track: nil}, // removed content still occupies a position
					{Track: makeTrack("t2", "Let It Be", "1970", 243000)},
				},
			}
			json.NewEncoder(w).Encode(page)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	srv, _ := newTestService(t, handler)

	snapshot, err := srv.GetPlaylistSnapshot(context.Background(), "pl1")
	if err != nil {
		t.Fatalf("GetPlaylistSnapshot returned error: %v", err)
	}

	t.Run("Playlist Metadata", func(t *testing.T) {
		if snapshot.Playlist.Name != "Road Trip" || snapshot.Playlist.OwnerID != "user1" {
			t.Errorf("unexpected playlist: %+v", snapshot.Playlist)
		}
	})

	t.Run("Skips Null Items But Keeps Positions", func(t *testing.T) {
		if len(snapshot.Tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(snapshot.Tracks))
		}
		if snapshot.Tracks[0].Position != 0 {
			t.Errorf("expected first track at position 0, got %d", snapshot.Tracks[0].Position)
		}
		if snapshot.Tracks[1].Position != 2 {
			t.Errorf("expected second track at position 2, got %d", snapshot.Tracks[1].Position)
		}
	})

	t.Run("Maps Fields", func(t *testing.T) {
		track := snapshot.Tracks[0]
		if track.Title != "Yesterday" || track.URI != "spotify:track:t1" {
			t.Errorf("unexpected track: %+v", track)
		}
		if track.AlbumYear != 1965 {
			t.Errorf("expected album year 1965, got %d", track.AlbumYear)
		}
		if track.PrimaryArtist() != "Artist A" {
			t.Errorf("expected primary artist 'Artist A', got %q", track.PrimaryArtist())
		}
		if snapshot.Tracks[1].AlbumYear != 1970 {
			t.Errorf("expected year-only release date to parse, got %d", snapshot.Tracks[1].AlbumYear)
		}
	})

	t.Run("Missing Playlist", func(t *testing.T) {
		notFound, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := notFound.GetPlaylistSnapshot(context.Background(), "missing")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})
}

func TestSpotifyServiceRemoveTracks(t *testing.T) {
	t.Run("Merges Positions And Batches", func(t *testing.T) {
		var payloads []removalPayload
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("expected DELETE, got %s", r.Method)
			}
			if r.URL.Path != "/playlists/pl1/tracks" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}

			var payload removalPayload
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode payload: %v", err)
			}
			payloads = append(payloads, payload)
			w.Write([]byte(`{"snapshot_id": "abc"}`))
		})
		srv, _ := newTestService(t, handler)

		// 101 distinct URIs plus a second occurrence of the first one.
		var removals []review.Removal
		for i := 0; i < 101; i++ {
			removals = append(removals, review.Removal{
				URI:      fmt.Sprintf("spotify:track:t%d", i),
				Position: i,
			})
		}
		removals = append(removals, review.Removal{URI: "spotify:track:t0", Position: 200})

		if err := srv.RemoveTracks(context.Background(), "pl1", removals); err != nil {
			t.Fatalf("RemoveTracks returned error: %v", err)
		}

		if len(payloads) != 2 {
			t.Fatalf("expected 2 batches, got %d", len(payloads))
		}
		if len(payloads[0].Tracks) != 100 || len(payloads[1].Tracks) != 1 {
			t.Errorf("unexpected batch sizes: %d, %d", len(payloads[0].Tracks), len(payloads[1].Tracks))
		}

		first := payloads[0].Tracks[0]
		if first.URI != "spotify:track:t0" || len(first.Positions) != 2 {
			t.Errorf("expected merged positions for t0, got %+v", first)
		}
	})

	t.Run("No Removals Is A No-Op", func(t *testing.T) {
		srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))

		if err := srv.RemoveTracks(context.Background(), "pl1", nil); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

var _ OAuthService = (*SpotifyService)(nil)

func TestParseReleaseYearMapping(t *testing.T) {
	if got := models.ParseReleaseYear("1992-03-14"); got != 1992 {
		t.Errorf("expected 1992, got %d", got)
	}
	if got := models.ParseReleaseYear(""); got != 0 {
		t.Errorf("expected 0 for empty date, got %d", got)
	}
}
