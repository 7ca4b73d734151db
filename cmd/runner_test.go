package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/Hamster45105/tunify/internal/services"
	"github.com/Hamster45105/tunify/internal/shared"
	tu "github.com/Hamster45105/tunify/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			spotify := &tu.MockService{}

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Logger:  logger,
				Output:  output,
				Spotify: spotify,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.spotify != spotify {
				t.Error("expected spotify to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 4 {
			t.Fatalf("expected 4 commands, got %d", len(commands))
		}

		names := map[string]bool{}
		for _, cmd := range commands {
			names[cmd.Name] = true
		}
		for _, want := range []string{"auth", "devices", "play", "serve"} {
			if !names[want] {
				t.Errorf("expected command %q to be registered", want)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("compact", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"a": 1}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "{\"a\":1}\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("pretty", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"a": 1}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "  \"a\": 1") {
				t.Errorf("expected indented output, got %q", output.String())
			}
		})

		t.Run("write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writeJSON(map[string]int{"a": 1}, false); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s\n", "world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "hello world\n" {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestDevicesCommand(t *testing.T) {
	newRunner := func(svc services.OAuthService) (*Runner, *bytes.Buffer) {
		output := &bytes.Buffer{}
		config := shared.DefaultConfig()
		config.Credentials.Spotify.AccessToken = "at"
		return NewRunner(RunnerOpts{
			Config:  config,
			Spotify: svc,
			Output:  output,
			Logger:  shared.NewLogger(&bytes.Buffer{}),
		}), output
	}

	t.Run("Without Service", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		cmd := devicesCommand(runner)
		err := cmd.Run(context.Background(), []string{"devices"})
		if err == nil {
			t.Error("expected error without configured credentials")
		}
	})

	t.Run("Lists Devices", func(t *testing.T) {
		svc := &tu.MockService{
			Dev: []services.Device{
				{ID: "d1", Name: "Desk", Type: "Computer", IsActive: true},
			},
		}
		runner, output := newRunner(svc)

		cmd := devicesCommand(runner)
		if err := cmd.Run(context.Background(), []string{"devices"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if svc.Token == nil || svc.Token.AccessToken != "at" {
			t.Errorf("expected saved token used, got %+v", svc.Token)
		}
		out := output.String()
		if !strings.Contains(out, "Desk") || !strings.Contains(out, "Computer") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("JSON Output", func(t *testing.T) {
		svc := &tu.MockService{
			Dev: []services.Device{{ID: "d1", Name: "Desk", Type: "Computer"}},
		}
		runner, output := newRunner(svc)

		cmd := devicesCommand(runner)
		if err := cmd.Run(context.Background(), []string{"devices", "--json"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `"Desk"`) {
			t.Errorf("expected JSON output, got %q", output.String())
		}
	})

	t.Run("No Saved Token", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config:  shared.DefaultConfig(),
			Spotify: &tu.MockService{},
			Output:  &bytes.Buffer{},
			Logger:  shared.NewLogger(&bytes.Buffer{}),
		})

		cmd := devicesCommand(runner)
		err := cmd.Run(context.Background(), []string{"devices"})
		if err == nil {
			t.Error("expected error without saved token")
		}
	})
}
