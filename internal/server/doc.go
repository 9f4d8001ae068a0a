// Package server provides the temporary HTTP plumbing behind the CLI's
// Spotify login.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern. The [BasicRouter] implementation uses
// [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow.
// The handler validates the state parameter (CSRF protection), exchanges the
// authorization code for tokens, and sends the result through a channel. It
// only processes one callback to prevent replay attacks.
//
// # Usage
//
// When the user runs `refinery auth`, a temporary HTTP server starts on the
// configured local address, handles the Spotify callback, and shuts down
// after receiving the OAuth token.
package server
