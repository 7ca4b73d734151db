package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/Hamster45105/tunify/internal/shared"
)

// Devices lists the user's available Spotify playback devices.
func (r *Runner) Devices(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify credentials not configured, run: tunify auth", shared.ErrMissingCredentials)
	}

	token := r.config.Credentials.Spotify.Token()
	if token == nil {
		return fmt.Errorf("%w: no saved token, run: tunify auth", shared.ErrNotAuthenticated)
	}

	if err := r.spotify.OAuthenticate(ctx, token); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	r.logger.Info("listing playback devices")

	devices, err := r.spotify.Devices(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(devices, pretty)
	}

	if len(devices) == 0 {
		return r.writePlain("No devices found. Open Spotify on a device first.\n")
	}

	r.writePlain("Found %d devices:\n\n", len(devices))
	for i, d := range devices {
		r.writePlain("%d. %s\n", i+1, d.Name)
		r.writePlain("   Type: %s\n", d.Type)
		r.writePlain("   ID: %s\n", d.ID)
		if d.IsActive {
			r.writePlain("   Active: yes\n")
		}
		r.writePlain("\n")
	}

	return nil
}
