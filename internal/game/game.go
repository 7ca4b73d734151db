package game

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/Hamster45105/tunify/internal/services"
	"github.com/Hamster45105/tunify/internal/shared"
)

const (
	// MaxGuesses bounds the guess loop. The engine itself never enforces
	// it: both front ends stop offering guesses once it is reached, and
	// [RoundPoints] stays non-negative only under that contract.
	MaxGuesses = 6

	// maxRoundPoints is the best possible score for a round (a correct
	// first guess), the denominator of the points percentage.
	maxRoundPoints = 6
)

// RoundPoints returns the points awarded for a correct guess on the given
// 1-based guess number.
func RoundPoints(guess int) int {
	return 7 - guess
}

// PlaylistSummary describes a loaded playlist.
type PlaylistSummary struct {
	Name      string
	SongCount int
	ImageURL  string
}

// GuessResult is the outcome of a single guess.
type GuessResult struct {
	Correct      bool
	SongName     string
	Artist       string
	Guesses      int
	PointsEarned int
	GuessesLeft  int
}

// SkipResult reveals the song of a skipped round.
type SkipResult struct {
	SongName string
	Artist   string
}

// Stats is a read-only snapshot of the session counters.
type Stats struct {
	Games            int
	Wins             int
	Points           int
	WinPercentage    float64
	PointsPercentage float64
}

// Game runs the guessing-game state machine over a [Session], delegating
// catalog access to a [services.Service]. It holds no state of its own, so a
// single Game may serve any number of sessions.
type Game struct {
	svc       services.Service
	randIndex func(n int) int
}

// New creates a game engine backed by the given streaming service.
func New(svc services.Service) *Game {
	return &Game{svc: svc, randIndex: rand.IntN}
}

// LoadPlaylist resolves a playlist link and stores its identity and track
// count in the session. A lookup failure or an empty playlist is reported as
// [shared.ErrPlaylistNotFound].
func (g *Game) LoadPlaylist(ctx context.Context, sess *Session, link string) (*PlaylistSummary, error) {
	playlist, err := g.svc.GetPlaylist(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrPlaylistNotFound, err)
	}

	if playlist.TrackCount == 0 {
		return nil, fmt.Errorf("%w: playlist has no tracks", shared.ErrPlaylistNotFound)
	}

	sess.PlaylistID = playlist.ID
	sess.SongCount = playlist.TrackCount

	return &PlaylistSummary{
		Name:      playlist.Name,
		SongCount: playlist.TrackCount,
		ImageURL:  playlist.ImageURL,
	}, nil
}

// PickRandomSong draws a uniformly random offset in [0, songCount) and makes
// the track at that offset the current song, resetting the guess counter to 1.
// Every call is an independent draw; repeats are possible.
func (g *Game) PickRandomSong(ctx context.Context, sess *Session) error {
	if sess.PlaylistID == "" || sess.SongCount == 0 {
		return shared.ErrNoPlaylist
	}

	offset := g.randIndex(sess.SongCount)
	track, err := g.svc.PlaylistTrackAt(ctx, sess.PlaylistID, offset)
	if err != nil {
		return err
	}

	sess.CurrentSong = &Song{
		Name:   track.Name,
		Artist: track.Artist,
		URI:    track.URI,
		ID:     track.ID,
	}
	sess.CurrentGuess = 1

	return nil
}

// SubmitGuess checks a guess against the current song. Correctness is exact,
// case-sensitive string equality on both name and artist. A correct guess
// wins the round and scores [RoundPoints]; an incorrect guess advances the
// guess counter.
func SubmitGuess(sess *Session, name, artist string) (*GuessResult, error) {
	if sess.CurrentSong == nil {
		return nil, shared.ErrNoActiveRound
	}

	song := sess.CurrentSong
	if name == song.Name && artist == song.Artist {
		earned := RoundPoints(sess.CurrentGuess)
		sess.Wins++
		sess.Points += earned

		return &GuessResult{
			Correct:      true,
			SongName:     song.Name,
			Artist:       song.Artist,
			Guesses:      sess.CurrentGuess,
			PointsEarned: earned,
		}, nil
	}

	sess.CurrentGuess++
	return &GuessResult{
		Correct:     false,
		GuessesLeft: 7 - sess.CurrentGuess,
	}, nil
}

// SkipRound gives up on the current round, counts it as played, and reveals
// the song. The song stays current so the caller can replay the reveal; a new
// round only begins with the next [Game.PickRandomSong].
func SkipRound(sess *Session) (*SkipResult, error) {
	if sess.CurrentSong == nil {
		return nil, shared.ErrNoActiveRound
	}

	sess.Games++
	return &SkipResult{
		SongName: sess.CurrentSong.Name,
		Artist:   sess.CurrentSong.Artist,
	}, nil
}

// EndRound counts a round as played. Not idempotent: callers must invoke it
// exactly once per round that concludes without a skip.
func EndRound(sess *Session) {
	sess.Games++
}

// PlayCurrent starts playback of the current song on the given device.
func (g *Game) PlayCurrent(ctx context.Context, sess *Session, deviceID string) error {
	if sess.CurrentSong == nil {
		return shared.ErrNoActiveRound
	}
	return g.svc.Play(ctx, deviceID, sess.CurrentSong.URI)
}

// SessionStats computes the session's score snapshot. Percentages are rounded
// to one decimal place and zero when no games have been played.
func SessionStats(sess *Session) Stats {
	stats := Stats{
		Games:  sess.Games,
		Wins:   sess.Wins,
		Points: sess.Points,
	}

	if sess.Games > 0 {
		stats.WinPercentage = round1(float64(sess.Wins) / float64(sess.Games) * 100)
		stats.PointsPercentage = round1(float64(sess.Points) / float64(sess.Games*maxRoundPoints) * 100)
	}

	return stats
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
