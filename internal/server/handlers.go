package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/Hamster45105/tunify/internal/game"
	"github.com/Hamster45105/tunify/internal/services"
	"github.com/Hamster45105/tunify/internal/shared"
	"github.com/Hamster45105/tunify/internal/store"
	"github.com/Hamster45105/tunify/internal/web"
)

// SessionCookie is the name of the browser session cookie.
const SessionCookie = "tunify_session"

const searchPageSize = 10

// GameHandler serves the browser game: page routes, the OAuth login flow
// and the JSON game API. Each browser session carries its own OAuth token,
// so concurrent players never share account state.
type GameHandler struct {
	store      store.Store
	newService func() (services.OAuthService, error)
	conf       *shared.Config
	logger     *log.Logger
	renderer   *web.Renderer
}

// NewGameHandler creates a game handler backed by the given session store.
// newService constructs a fresh account client per request so that each
// session's token can be attached independently.
func NewGameHandler(st store.Store, newService func() (services.OAuthService, error), conf *shared.Config, logger *log.Logger, renderer *web.Renderer) *GameHandler {
	return &GameHandler{
		store:      st,
		newService: newService,
		conf:       conf,
		logger:     logger,
		renderer:   renderer,
	}
}

// Register attaches all game routes to the router.
func (h *GameHandler) Register(r *BasicRouter) {
	r.HandleFunc("GET", "/{$}", h.Index)
	r.HandleFunc("GET", "/login", h.Login)
	r.HandleFunc("GET", "/callback", h.Callback)
	r.HandleFunc("GET", "/game", h.Game)
	r.HandleFunc("GET", "/logout", h.Logout)
	r.HandleFunc("GET", "/api/devices", h.Devices)
	r.HandleFunc("POST", "/api/playlist", h.SetPlaylist)
	r.HandleFunc("POST", "/api/new-song", h.NewSong)
	r.HandleFunc("POST", "/api/play", h.Play)
	r.HandleFunc("POST", "/api/pause", h.Pause)
	r.HandleFunc("POST", "/api/search", h.Search)
	r.HandleFunc("POST", "/api/guess", h.Guess)
	r.HandleFunc("POST", "/api/skip", h.Skip)
	r.HandleFunc("GET", "/api/stats", h.Stats)
	r.HandleFunc("POST", "/api/end-game", h.EndGame)
}

// session loads the session for the request's cookie, creating a new
// session (and setting the cookie) when none exists.
func (h *GameHandler) session(w http.ResponseWriter, r *http.Request) (*game.Session, error) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		sess, err := h.store.Get(c.Value)
		if err == nil {
			sess.Touch()
			return sess, nil
		}
		if !errors.Is(err, store.ErrSessionNotFound) {
			return nil, err
		}
	}

	sess := game.NewSession(shared.GenerateID())
	if err := h.store.Put(sess); err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

// client builds an account client authenticated with the session's token.
// Refreshed tokens are written back to the session so later requests reuse
// them instead of refreshing again.
func (h *GameHandler) client(ctx context.Context, sess *game.Session) (services.OAuthService, error) {
	if !sess.Authenticated() {
		return nil, shared.ErrNotAuthenticated
	}

	svc, err := h.newService()
	if err != nil {
		return nil, err
	}

	svc.SetTokenRefreshCallback(func(tok *oauth2.Token) {
		sess.Token = tok
	})
	if err := svc.OAuthenticate(ctx, sess.Token); err != nil {
		return nil, err
	}
	return svc, nil
}

func (h *GameHandler) save(sess *game.Session) {
	if err := h.store.Put(sess); err != nil {
		h.logger.Error("failed to persist session", "session", sess.ID, "error", err)
	}
}

// writeJSON writes data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error body in the shape the game client expects.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// apiError maps domain errors onto the status codes and messages the game
// client displays.
func (h *GameHandler) apiError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, shared.ErrNoPlaylist):
		writeError(w, http.StatusBadRequest, "No playlist selected")
	case errors.Is(err, shared.ErrNoActiveRound):
		writeError(w, http.StatusBadRequest, "No song selected")
	case errors.Is(err, shared.ErrPlaylistNotFound):
		writeError(w, http.StatusBadRequest, "Invalid playlist link")
	default:
		h.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return shared.ErrInvalidInput
	}
	return nil
}

// Index renders the landing page.
func (h *GameHandler) Index(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.renderer.Render(w, "index.html", map[string]any{
		"Authenticated": sess.Authenticated(),
	})
}

// Login starts the OAuth authorization flow for this session.
func (h *GameHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	svc, err := h.newService()
	if err != nil {
		h.logger.Error("failed to build account client", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	state, err := shared.GenerateState()
	if err != nil {
		h.logger.Error("failed to generate state token", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	sess.OAuthState = state
	h.save(sess)

	http.Redirect(w, r, svc.GetAuthURL(state), http.StatusFound)
}

// Callback completes the OAuth flow, storing the exchanged token on the
// session. Requests without a code (user denied, or a stray visit) are sent
// back to /login.
func (h *GameHandler) Callback(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	state := r.URL.Query().Get("state")
	if sess.OAuthState == "" || state != sess.OAuthState {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}
	sess.OAuthState = ""

	svc, err := h.newService()
	if err != nil {
		h.logger.Error("failed to build account client", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	token, err := svc.GetOAuthConfig().Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("token exchange failed", "error", err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	sess.Token = token
	h.save(sess)

	http.Redirect(w, r, "/game", http.StatusFound)
}

// Game renders the game page, bouncing unauthenticated sessions to /login.
func (h *GameHandler) Game(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !sess.Authenticated() {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	h.renderer.Render(w, "game.html", map[string]any{
		"MaxGuesses": game.MaxGuesses,
		"Durations":  h.conf.Game.Durations(),
	})
}

// Logout drops the session and expires the cookie.
func (h *GameHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if err := h.store.Delete(c.Value); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
			h.logger.Error("failed to delete session", "session", c.Value, "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

// Devices lists the user's available playback devices.
func (h *GameHandler) Devices(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.apiError(w, err)
		return
	}
	svc, err := h.client(r.Context(), sess)
	if err != nil {
		h.apiError(w, err)
		return
	}
	defer h.save(sess)

	devices, err := svc.Devices(r.Context())
	if err != nil {
		h.apiError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(devices))
	for _, d := range devices {
		out = append(out, map[string]any{
			"id":        d.ID,
			"name":      d.Name,
			"type":      d.Type,
			"is_active": d.IsActive,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": out})
}

// SetPlaylist resolves a playlist link and binds the playlist to the session.
func (h *GameHandler) SetPlaylist(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.apiError(w, err)
		return
	}
	svc, err := h.client(r.Context(), sess)
	if err != nil {
		h.apiError(w, err)
		return
	}
	defer h.save(sess)

	var req struct {
		PlaylistLink string `json:"playlist_link"`
	}
	if err := decodeBody(r, &req); err != nil || req.PlaylistLink == "" {
		writeError(w, http.StatusBadRequest, "Missing playlist link")
		return
	}

	playlist, err := game.New(svc).LoadPlaylist(r.Context(), sess, req.PlaylistLink)
	if err != nil {
		h.apiError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"name":       playlist.Name,
		"song_count": playlist.SongCount,
		"image":      playlist.ImageURL,
	})
}

// NewSong starts a round by picking a random track from the session playlist.
func (h *GameHandler) NewSong(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.apiError(w, err)
		return
	}
	svc, err := h.client(r.Context(), sess)
	if err != nil {
		h.apiError(w, err)
		return
	}
	defer h.save(sess)

	if err := game.New(svc).PickRandomSong(r.Context(), sess); err != nil {
		h.apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Play starts playback of the current song on the chosen device. The
// response echoes the snippet duration so the client knows when to pause.
func (h *GameHandler) Play(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.apiError(w, err)
		return
	}
	svc, err := h.client(r.Context(), sess)
	if err != nil {
		h.apiError(w, err)
		return
	}
	defer h.save(sess)

	var req struct {
		DeviceID string  `json:"device_id"`
		Duration float64 `json:"duration"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Duration <= 0 {
		req.Duration = 3
	}

	if err := game.New(svc).PlayCurrent(r.Context(), sess, req.DeviceID); err != nil {
		h.apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"duration": req.Duration,
	})
}

// Pause pauses playback.
func (h *GameHandler) Pause(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.apiError(w, err)
		return
	}
	svc, err := h.client(r.Context(), sess)
	if err != nil {
		h.apiError(w, err)
		return
	}
	defer h.save(sess)

	if err := svc.Pause(r.Context()); err != nil {
		h.apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Search returns track suggestions for the guess autocomplete.
func (h *GameHandler) Search(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.apiError(w, err)
		return
	}
	svc, err := h.client(r.Context(), sess)
	if err != nil {
		h.apiError(w, err)
		return
	}
	defer h.save(sess)

	var req struct {
		Query  string `json:"query"`
		Offset int    `json:"offset"`
	}
	if err := decodeBody(r, &req); err != nil || req.Query == "" {
		writeError(w, http.StatusBadRequest, "Missing search query")
		return
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	tracks, err := svc.Search(r.Context(), req.Query, req.Offset, searchPageSize)
	if err != nil {
		h.apiError(w, err)
		return
	}

	songs := make([]map[string]any, 0, len(tracks))
	for _, t := range tracks {
		songs = append(songs, map[string]any{
			"name":   t.Name,
			"artist": t.Artist,
			"id":     t.ID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"songs": songs})
}

// Guess checks a guess against the current song.
func (h *GameHandler) Guess(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.apiError(w, err)
		return
	}
	if !sess.Authenticated() {
		h.apiError(w, shared.ErrNotAuthenticated)
		return
	}
	defer h.save(sess)

	var req struct {
		Name   string `json:"name"`
		Artist string `json:"artist"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := game.SubmitGuess(sess, req.Name, req.Artist)
	if err != nil {
		if errors.Is(err, shared.ErrNoActiveRound) {
			writeError(w, http.StatusBadRequest, "No song to guess")
			return
		}
		h.apiError(w, err)
		return
	}

	if result.Correct {
		writeJSON(w, http.StatusOK, map[string]any{
			"correct":       true,
			"song_name":     result.SongName,
			"artist":        result.Artist,
			"guesses":       result.Guesses,
			"points_earned": result.PointsEarned,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"correct":      false,
		"guesses_left": result.GuessesLeft,
	})
}

// Skip gives up on the current song and reveals it.
func (h *GameHandler) Skip(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.apiError(w, err)
		return
	}
	defer h.save(sess)

	song, err := game.SkipRound(sess)
	if err != nil {
		if errors.Is(err, shared.ErrNoActiveRound) {
			writeError(w, http.StatusBadRequest, "No song to skip")
			return
		}
		h.apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"song_name": song.SongName,
		"artist":    song.Artist,
	})
}

// Stats returns cumulative session statistics.
func (h *GameHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.apiError(w, err)
		return
	}
	defer h.save(sess)

	stats := game.SessionStats(sess)
	writeJSON(w, http.StatusOK, map[string]any{
		"games":             stats.Games,
		"wins":              stats.Wins,
		"points":            stats.Points,
		"win_percentage":    stats.WinPercentage,
		"points_percentage": stats.PointsPercentage,
	})
}

// EndGame finishes the current round without a correct guess.
func (h *GameHandler) EndGame(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.apiError(w, err)
		return
	}
	defer h.save(sess)

	game.EndRound(sess)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
