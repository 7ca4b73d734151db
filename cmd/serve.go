package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Hamster45105/tunify/internal/server"
	"github.com/Hamster45105/tunify/internal/services"
	"github.com/Hamster45105/tunify/internal/shared"
	"github.com/Hamster45105/tunify/internal/store"
	"github.com/Hamster45105/tunify/internal/web"
)

// janitorInterval is how often expired sessions are swept from the store.
const janitorInterval = 10 * time.Minute

// Serve runs the browser game server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.config

	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrInvalidArgument)
	}

	st, err := newStore(config)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer st.Close()

	renderer, err := web.NewRenderer(r.logger)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	newService := func() (services.OAuthService, error) {
		return services.NewSpotifyService(config.Credentials.Spotify.Map())
	}

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))

	handler := server.NewGameHandler(st, newService, config, r.logger, renderer)
	handler.Register(router)

	addr := cmd.String("addr")
	if addr == "" {
		addr = config.Server.Addr()
	}

	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go r.janitor(ctx, st, config.Store.SessionTTL())

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("starting game server", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	return nil
}

// janitor periodically drops sessions idle longer than ttl.
func (r *Runner) janitor(ctx context.Context, st store.Store, ttl time.Duration) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := st.Cleanup(ttl)
			if err != nil {
				r.logger.Error("session cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				r.logger.Info("expired sessions removed", "count", removed)
			}
		}
	}
}

func newStore(config *shared.Config) (store.Store, error) {
	switch config.Store.Backend {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		path := config.Store.Path
		if path == "" {
			path = "tunify.db"
		}
		return store.NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", shared.ErrInvalidConfig, config.Store.Backend)
	}
}
