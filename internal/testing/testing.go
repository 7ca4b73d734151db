// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/Hamster45105/tunify/internal/services"
)

// MockService is a configurable test double for [services.OAuthService].
//
// Zero value returns empty results; set the canned fields or error to drive
// a scenario. Call counts are recorded for assertion.
type MockService struct {
	Playlist *services.Playlist
	Track    *services.Track
	Tracks   []services.Track
	Dev      []services.Device
	Err      error

	Token    *oauth2.Token
	Callback func(*oauth2.Token)

	PlayCalls  []string
	PauseCalls int
	TrackAsks  []int
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return m.Err
}

func (m *MockService) GetPlaylist(ctx context.Context, link string) (*services.Playlist, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Playlist, nil
}

func (m *MockService) PlaylistTrackAt(ctx context.Context, playlistID string, offset int) (*services.Track, error) {
	m.TrackAsks = append(m.TrackAsks, offset)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Track, nil
}

func (m *MockService) Search(ctx context.Context, query string, offset, limit int) ([]services.Track, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tracks, nil
}

func (m *MockService) Devices(ctx context.Context) ([]services.Device, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Dev, nil
}

func (m *MockService) Play(ctx context.Context, deviceID, trackURI string) error {
	m.PlayCalls = append(m.PlayCalls, trackURI)
	return m.Err
}

func (m *MockService) Pause(ctx context.Context) error {
	m.PauseCalls++
	return m.Err
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) GetAuthURL(state string) string {
	return "https://accounts.example.com/authorize?state=" + state
}

func (m *MockService) GetOAuthConfig() *oauth2.Config {
	return &oauth2.Config{}
}

func (m *MockService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	m.Token = token
	return m.Err
}

func (m *MockService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	m.Callback = fn
}

var _ services.OAuthService = (*MockService)(nil)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// RoundTripFunc adapts a function to [http.RoundTripper] for per-request behavior.
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
