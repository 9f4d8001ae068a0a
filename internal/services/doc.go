// Package services implements typed API clients for the playlist providers
// consumed by the review commands. Spotify is the only provider today; the
// Service interface keeps the review flows provider-agnostic.
package services
