package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/Hamster45105/tunify/internal/shared"
	"github.com/Hamster45105/tunify/internal/ui"
)

// Play launches the interactive terminal rendition of the game.
//
// Uses the token persisted by the auth command; refreshed tokens are written
// back to the config file so the next run skips reauthorization.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify credentials not configured, run: tunify auth", shared.ErrMissingCredentials)
	}

	token := r.config.Credentials.Spotify.Token()
	if token == nil {
		return fmt.Errorf("%w: no saved token, run: tunify auth", shared.ErrNotAuthenticated)
	}

	r.spotify.SetTokenRefreshCallback(func(tok *oauth2.Token) {
		if err := r.config.Credentials.Spotify.Update(tok); err != nil {
			r.logger.Warnf("failed to update token %v", err)
			return
		}
		if err := shared.SaveConfig(configPath, r.config); err != nil {
			r.logger.Warnf("failed to save refreshed token %v", err)
		}
	})

	if err := r.spotify.OAuthenticate(ctx, token); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/tunify-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.spotify, r.config)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
