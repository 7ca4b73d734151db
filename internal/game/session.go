package game

import (
	"time"

	"golang.org/x/oauth2"
)

// Song identifies the track under guess in the active round.
type Song struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
	URI    string `json:"uri"`
	ID     string `json:"id"`
}

// Session holds one player's game state across requests. Counters only grow;
// they reset when the session is cleared on logout or expiry.
type Session struct {
	ID         string `json:"id"`
	PlaylistID string `json:"playlist_id,omitempty"`
	SongCount  int    `json:"song_count,omitempty"`

	CurrentSong *Song `json:"current_song,omitempty"`
	// CurrentGuess is the 1-based guess number of the active round. It is
	// only meaningful while CurrentSong is set.
	CurrentGuess int `json:"current_guess"`

	Games  int `json:"games"`
	Wins   int `json:"wins"`
	Points int `json:"points"`

	// Token is the player's streaming-service OAuth token for web sessions.
	Token *oauth2.Token `json:"token,omitempty"`
	// OAuthState is the pending CSRF state between /login and /callback.
	OAuthState string `json:"oauth_state,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// NewSession creates an empty session with the given identifier.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{ID: id, CreatedAt: now, LastSeenAt: now}
}

// Touch records session activity for expiry tracking.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}

// Authenticated reports whether the session carries a usable token.
func (s *Session) Authenticated() bool {
	return s.Token != nil && (s.Token.AccessToken != "" || s.Token.RefreshToken != "")
}
