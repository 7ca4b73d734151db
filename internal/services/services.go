// package services defines interface Service for interacting with streaming provider HTTP APIs
package services

import (
	"context"

	"golang.org/x/oauth2"
)

// Service is the capability surface the game needs from a streaming provider:
// catalog lookup, search, and playback control. All methods are network calls
// and may fail with a wrapped [shared.ErrAPIRequest]; none of them retry.
type Service interface {
	// Authenticate performs OAuth authentication with the provider.
	// Expects either an "access_token" or "auth_code" in credentials.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// GetPlaylist resolves a playlist share link, URI, or bare ID to its metadata.
	GetPlaylist(ctx context.Context, link string) (*Playlist, error)

	// PlaylistTrackAt fetches the single track at offset within a playlist.
	PlaylistTrackAt(ctx context.Context, playlistID string, offset int) (*Track, error)

	// Search returns up to limit tracks matching query, starting at offset.
	Search(ctx context.Context, query string, offset, limit int) ([]Track, error)

	// Devices lists the user's available playback devices.
	Devices(ctx context.Context) ([]Device, error)

	// Play starts playback of a track URI on the given device.
	Play(ctx context.Context, deviceID, trackURI string) error

	// Pause pauses playback on the user's active device.
	Pause(ctx context.Context) error

	// Name returns the name of the provider (e.g., "Spotify")
	Name() string
}

// OAuthService extends Service for providers authenticated through a
// server-side OAuth2 authorization-code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the provider authorization URL for user login.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying OAuth2 configuration for callback handling.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate authenticates with a previously issued token.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error

	// SetTokenRefreshCallback registers a callback invoked whenever the
	// provider transparently refreshes the access token.
	SetTokenRefreshCallback(fn func(*oauth2.Token))
}

// Playlist represents a music playlist from any provider.
type Playlist struct {
	ID         string
	Name       string
	TrackCount int
	ImageURL   string
}

// Track represents a music track from any provider.
type Track struct {
	ID     string
	Name   string
	Artist string
	URI    string
}

// Device represents a playback device registered with the provider.
type Device struct {
	ID       string
	Name     string
	Type     string
	IsActive bool
}
