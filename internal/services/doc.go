// Package services defines the [Service] interface for streaming providers and implements it for Spotify.
//
// # Service Interface
//
// The game core and the request handlers consume providers only through
// [Service]: playlist lookup, single-track fetch by offset, catalog search,
// device listing, and playback start/pause. The interface is deliberately
// narrow so the state machine can be tested against a canned substitute.
//
// # Spotify Implementation
//
// [SpotifyService] is a hand-rolled REST client over [oauth2].
//
// The [oauth2] client refreshes expired tokens transparently when a refresh
// token is present; [SpotifyService.SetTokenRefreshCallback] lets callers
// persist the replacement token (the web handlers store it back into the
// session, the CLI writes it to config.toml).
//
// Outgoing calls pass through a [rate.Limiter] before hitting the network.
// Failed calls are not retried.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : the API returned 401, reauthorization needed
//   - [shared.ErrAPIRequest] : any other failed HTTP request
//   - [shared.ErrTrackNotFound] : a playlist offset past the end
package services
