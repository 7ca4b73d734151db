package game

import (
	"context"
	"errors"
	"testing"

	"github.com/Hamster45105/tunify/internal/services"
	"github.com/Hamster45105/tunify/internal/shared"
	mocks "github.com/Hamster45105/tunify/internal/testing"
)

func newTestGame(svc services.Service, offsets ...int) *Game {
	g := New(svc)
	if len(offsets) > 0 {
		i := 0
		g.randIndex = func(n int) int {
			offset := offsets[i%len(offsets)]
			i++
			return offset
		}
	}
	return g
}

func TestRoundPoints(t *testing.T) {
	cases := []struct {
		guess int
		want  int
	}{
		{1, 6},
		{2, 5},
		{3, 4},
		{4, 3},
		{5, 2},
		{6, 1},
	}

	for _, c := range cases {
		if got := RoundPoints(c.guess); got != c.want {
			t.Errorf("RoundPoints(%d) = %d, want %d", c.guess, got, c.want)
		}
	}
}

func TestLoadPlaylist(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores Playlist On Session", func(t *testing.T) {
		svc := &mocks.MockService{
			Playlist: &services.Playlist{ID: "pl1", Name: "Road Trip", TrackCount: 50, ImageURL: "https://img"},
		}
		g := New(svc)
		sess := NewSession("s1")

		summary, err := g.LoadPlaylist(ctx, sess, "https://open.spotify.com/playlist/pl1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if summary.Name != "Road Trip" || summary.SongCount != 50 || summary.ImageURL != "https://img" {
			t.Errorf("unexpected summary: %+v", summary)
		}
		if sess.PlaylistID != "pl1" || sess.SongCount != 50 {
			t.Errorf("session not updated: %+v", sess)
		}
	})

	t.Run("Lookup Failure", func(t *testing.T) {
		svc := &mocks.MockService{Err: errors.New("boom")}
		g := New(svc)
		sess := NewSession("s1")

		_, err := g.LoadPlaylist(ctx, sess, "bad-link")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("Empty Playlist", func(t *testing.T) {
		svc := &mocks.MockService{Playlist: &services.Playlist{ID: "pl1", Name: "Empty"}}
		g := New(svc)
		sess := NewSession("s1")

		_, err := g.LoadPlaylist(ctx, sess, "pl1")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})
}

func TestPickRandomSong(t *testing.T) {
	ctx := context.Background()

	t.Run("Without Playlist", func(t *testing.T) {
		g := New(&mocks.MockService{})
		sess := NewSession("s1")

		if err := g.PickRandomSong(ctx, sess); !errors.Is(err, shared.ErrNoPlaylist) {
			t.Errorf("expected ErrNoPlaylist, got %v", err)
		}
	})

	t.Run("Sets Current Song And Resets Guess", func(t *testing.T) {
		svc := &mocks.MockService{
			Track: &services.Track{ID: "t1", Name: "Song", Artist: "Artist", URI: "spotify:track:t1"},
		}
		g := newTestGame(svc, 17)
		sess := NewSession("s1")
		sess.PlaylistID = "pl1"
		sess.SongCount = 50
		sess.CurrentGuess = 4

		if err := g.PickRandomSong(ctx, sess); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if sess.CurrentSong == nil || sess.CurrentSong.Name != "Song" {
			t.Fatalf("current song not set: %+v", sess.CurrentSong)
		}
		if sess.CurrentGuess != 1 {
			t.Errorf("expected guess reset to 1, got %d", sess.CurrentGuess)
		}
		if len(svc.TrackAsks) != 1 || svc.TrackAsks[0] != 17 {
			t.Errorf("expected offset 17 requested, got %v", svc.TrackAsks)
		}
	})

	t.Run("Offsets Stay In Range", func(t *testing.T) {
		svc := &mocks.MockService{
			Track: &services.Track{ID: "t1", Name: "Song", Artist: "Artist"},
		}
		g := New(svc)
		sess := NewSession("s1")
		sess.PlaylistID = "pl1"
		sess.SongCount = 5

		for i := 0; i < 100; i++ {
			if err := g.PickRandomSong(ctx, sess); err != nil {
				t.Fatalf("pick %d failed: %v", i, err)
			}
		}
		for _, offset := range svc.TrackAsks {
			if offset < 0 || offset >= 5 {
				t.Fatalf("offset %d out of range [0,5)", offset)
			}
		}
	})

	t.Run("Service Error Leaves Session Unchanged", func(t *testing.T) {
		svc := &mocks.MockService{Err: errors.New("boom")}
		g := New(svc)
		sess := NewSession("s1")
		sess.PlaylistID = "pl1"
		sess.SongCount = 10

		if err := g.PickRandomSong(ctx, sess); err == nil {
			t.Fatal("expected error")
		}
		if sess.CurrentSong != nil {
			t.Error("current song should not be set on failure")
		}
	})
}

func TestSubmitGuess(t *testing.T) {
	newRound := func() *Session {
		sess := NewSession("s1")
		sess.CurrentSong = &Song{Name: "Bohemian Rhapsody", Artist: "Queen", URI: "spotify:track:t1"}
		sess.CurrentGuess = 1
		return sess
	}

	t.Run("No Active Round", func(t *testing.T) {
		sess := NewSession("s1")
		if _, err := SubmitGuess(sess, "x", "y"); !errors.Is(err, shared.ErrNoActiveRound) {
			t.Errorf("expected ErrNoActiveRound, got %v", err)
		}
	})

	t.Run("Correct First Guess", func(t *testing.T) {
		sess := newRound()

		result, err := SubmitGuess(sess, "Bohemian Rhapsody", "Queen")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !result.Correct {
			t.Fatal("expected correct result")
		}
		if result.Guesses != 1 || result.PointsEarned != 6 {
			t.Errorf("expected 1 guess and 6 points, got %d/%d", result.Guesses, result.PointsEarned)
		}
		if sess.Wins != 1 || sess.Points != 6 {
			t.Errorf("session counters wrong: wins=%d points=%d", sess.Wins, sess.Points)
		}
	})

	t.Run("Correct Second Guess Earns Five", func(t *testing.T) {
		sess := newRound()

		if result, _ := SubmitGuess(sess, "Radio Ga Ga", "Queen"); result.Correct {
			t.Fatal("expected incorrect result")
		}

		result, err := SubmitGuess(sess, "Bohemian Rhapsody", "Queen")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !result.Correct || result.PointsEarned != 5 || result.Guesses != 2 {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("Wrong Guess Advances Counter", func(t *testing.T) {
		sess := newRound()

		result, err := SubmitGuess(sess, "Bohemian Rhapsody", "Wrong Artist")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Correct {
			t.Fatal("expected incorrect result")
		}
		if sess.CurrentGuess != 2 {
			t.Errorf("expected guess 2, got %d", sess.CurrentGuess)
		}
		if result.GuessesLeft != 5 {
			t.Errorf("expected 5 guesses left, got %d", result.GuessesLeft)
		}
		if sess.Wins != 0 || sess.Points != 0 {
			t.Error("counters should not change on a wrong guess")
		}
	})

	t.Run("Matching Is Case Sensitive", func(t *testing.T) {
		sess := newRound()

		result, err := SubmitGuess(sess, "bohemian rhapsody", "Queen")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Correct {
			t.Error("expected case-sensitive mismatch")
		}
	})
}

func TestSkipRound(t *testing.T) {
	t.Run("No Active Round", func(t *testing.T) {
		sess := NewSession("s1")
		if _, err := SkipRound(sess); !errors.Is(err, shared.ErrNoActiveRound) {
			t.Errorf("expected ErrNoActiveRound, got %v", err)
		}
	})

	t.Run("Reveals And Counts Game", func(t *testing.T) {
		sess := NewSession("s1")
		sess.CurrentSong = &Song{Name: "Song", Artist: "Artist"}
		sess.CurrentGuess = 3

		result, err := SkipRound(sess)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.SongName != "Song" || result.Artist != "Artist" {
			t.Errorf("unexpected reveal: %+v", result)
		}
		if sess.Games != 1 {
			t.Errorf("expected 1 game, got %d", sess.Games)
		}
		if sess.CurrentSong == nil {
			t.Error("skip must keep the current song for replay")
		}
	})
}

func TestEndRound(t *testing.T) {
	sess := NewSession("s1")

	EndRound(sess)
	EndRound(sess)

	if sess.Games != 2 {
		t.Errorf("expected 2 games, got %d", sess.Games)
	}
}

func TestPlayCurrent(t *testing.T) {
	ctx := context.Background()

	t.Run("No Active Round", func(t *testing.T) {
		g := New(&mocks.MockService{})
		sess := NewSession("s1")

		if err := g.PlayCurrent(ctx, sess, "dev1"); !errors.Is(err, shared.ErrNoActiveRound) {
			t.Errorf("expected ErrNoActiveRound, got %v", err)
		}
	})

	t.Run("Plays Current Song URI", func(t *testing.T) {
		svc := &mocks.MockService{}
		g := New(svc)
		sess := NewSession("s1")
		sess.CurrentSong = &Song{Name: "Song", Artist: "Artist", URI: "spotify:track:t1"}

		if err := g.PlayCurrent(ctx, sess, "dev1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(svc.PlayCalls) != 1 || svc.PlayCalls[0] != "spotify:track:t1" {
			t.Errorf("expected play call with track URI, got %v", svc.PlayCalls)
		}
	})
}

func TestSessionStats(t *testing.T) {
	t.Run("Zero Games", func(t *testing.T) {
		sess := NewSession("s1")

		stats := SessionStats(sess)
		if stats.WinPercentage != 0 || stats.PointsPercentage != 0 {
			t.Errorf("expected zero percentages, got %+v", stats)
		}
	})

	t.Run("Rounds To One Decimal", func(t *testing.T) {
		sess := NewSession("s1")
		sess.Games = 3
		sess.Wins = 2
		sess.Points = 7

		stats := SessionStats(sess)
		if stats.WinPercentage != 66.7 {
			t.Errorf("expected win percentage 66.7, got %v", stats.WinPercentage)
		}
		// 7 / (3*6) * 100 = 38.888...
		if stats.PointsPercentage != 38.9 {
			t.Errorf("expected points percentage 38.9, got %v", stats.PointsPercentage)
		}
	})

	t.Run("Is Read Only", func(t *testing.T) {
		sess := NewSession("s1")
		sess.Games = 2
		sess.Wins = 1
		sess.Points = 5

		first := SessionStats(sess)
		second := SessionStats(sess)
		if first != second {
			t.Errorf("stats should be stable: %+v vs %+v", first, second)
		}
		if sess.Games != 2 || sess.Wins != 1 || sess.Points != 5 {
			t.Error("stats must not mutate the session")
		}
	})
}

func TestFullRoundScenario(t *testing.T) {
	ctx := context.Background()
	svc := &mocks.MockService{
		Playlist: &services.Playlist{ID: "pl1", Name: "Mix", TrackCount: 50},
		Track:    &services.Track{ID: "t9", Name: "Take On Me", Artist: "a-ha", URI: "spotify:track:t9"},
	}
	g := newTestGame(svc, 9)
	sess := NewSession("s1")

	if _, err := g.LoadPlaylist(ctx, sess, "pl1"); err != nil {
		t.Fatalf("load playlist: %v", err)
	}
	if err := g.PickRandomSong(ctx, sess); err != nil {
		t.Fatalf("pick song: %v", err)
	}

	if result, _ := SubmitGuess(sess, "Africa", "Toto"); result.Correct {
		t.Fatal("expected miss")
	}
	result, err := SubmitGuess(sess, "Take On Me", "a-ha")
	if err != nil {
		t.Fatalf("guess: %v", err)
	}
	if !result.Correct || result.PointsEarned != 5 {
		t.Fatalf("expected win worth 5 points, got %+v", result)
	}
	EndRound(sess)

	stats := SessionStats(sess)
	if stats.Games != 1 || stats.Wins != 1 || stats.Points != 5 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.WinPercentage != 100 {
		t.Errorf("expected win percentage 100, got %v", stats.WinPercentage)
	}
	// 5 / 6 * 100 = 83.333...
	if stats.PointsPercentage != 83.3 {
		t.Errorf("expected points percentage 83.3, got %v", stats.PointsPercentage)
	}
}
