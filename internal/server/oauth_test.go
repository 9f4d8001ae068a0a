package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/refinery/internal/shared"
	"golang.org/x/oauth2"
)

func newHandler() *OAuthHandler {
	config := &oauth2.Config{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		RedirectURL:  "http://localhost:3000/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: "http://example.com/auth", TokenURL: "http://example.com/token"},
	}
	return NewOAuthHandler(config, "expected_state")
}

func TestOAuthHandler(t *testing.T) {
	t.Run("Rejects Mismatched State", func(t *testing.T) {
		h := newHandler()
		req := httptest.NewRequest(http.MethodGet, "/callback?state=wrong&code=abc", nil)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("Rejects Missing Code", func(t *testing.T) {
		h := newHandler()
		req := httptest.NewRequest(http.MethodGet, "/callback?state=expected_state&error=access_denied", nil)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("Handles Callback Once", func(t *testing.T) {
		h := newHandler()
		first := httptest.NewRequest(http.MethodGet, "/callback?state=wrong", nil)
		second := httptest.NewRequest(http.MethodGet, "/callback?state=wrong", nil)

		h.ServeHTTP(httptest.NewRecorder(), first)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, second)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for replayed callback, got %d", rec.Code)
		}
	})

	t.Run("Declares Callback Route", func(t *testing.T) {
		h := newHandler()
		routes := h.Routes()
		if len(routes) != 1 || routes[0] != "/callback" {
			t.Errorf("unexpected routes: %v", routes)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("Filters Methods", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("Applies Middleware In Order", func(t *testing.T) {
		var calls []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					calls = append(calls, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("outer"), mw("inner"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		if len(calls) != 3 || calls[0] != "outer" || calls[1] != "inner" || calls[2] != "handler" {
			t.Errorf("unexpected call order: %v", calls)
		}
	})
}
