// Package game implements the song-guessing state machine and its per-player session model.
//
// A round moves through: load playlist → pick random song → guess loop →
// resolved (correct or skipped) → next song or end of game. The [Game] engine
// validates the precondition of each transition and mutates the [Session]
// passed to it; it never stores state of its own.
//
// Two contracts live outside the engine on purpose:
//   - The guess loop is bounded to [MaxGuesses] by the presentation layer,
//     not here. [RoundPoints] assumes that bound.
//   - [SkipRound] reveals the song but leaves it current; callers that
//     want a fresh round must call [Game.PickRandomSong] again.
package game
