// Package store keeps per-player game sessions behind a small [Store]
// interface with in-memory and SQLite backends.
package store

import (
	"errors"
	"time"

	"github.com/Hamster45105/tunify/internal/game"
)

var ErrSessionNotFound = errors.New("session not found")

// Store holds active game sessions keyed by their opaque identifier. It has
// no logic beyond get, put, delete, and expiry sweeping; sessions themselves
// are mutated by the game engine between Get and Put.
type Store interface {
	// Get retrieves a session by ID, or [ErrSessionNotFound].
	Get(id string) (*game.Session, error)

	// Put inserts or replaces a session.
	Put(sess *game.Session) error

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(id string) error

	// Cleanup removes sessions idle longer than maxAge and reports how many
	// were removed.
	Cleanup(maxAge time.Duration) (int, error)

	// Close releases backend resources.
	Close() error
}
