package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamui-project/netstack/internal/api"
	iface "github.com/kamui-project/netstack/internal/service/interface"
	"github.com/kamui-project/netstack/internal/session"
)

func TestConfigureCommand_Run(t *testing.T) {
	var got session.Config
	sessions := &MockSessionService{
		SetCurrentFunc: func(cfg session.Config) error {
			got = cfg
			return nil
		},
	}

	output, err := execute(nil, nil, sessions,
		"configure",
		"--api-url", "https://api.example.com/v1/",
		"--secondary-api-url", "https://hyper.example.com/",
		"--token-url", "https://api.example.com/oauth/token",
		"--namespace", "com.example.app",
		"--app-slug", "example",
	)
	require.NoError(t, err)

	assert.Equal(t, session.Config{
		APIBaseURL:          "https://api.example.com/v1/",
		SecondaryAPIBaseURL: "https://hyper.example.com/",
		SecondaryPathPrefix: session.DefaultSecondaryPathPrefix,
		TokenEndpointURL:    "https://api.example.com/oauth/token",
		Namespace:           "com.example.app",
		AppSlug:             "example",
	}, got)
	assert.Contains(t, output, "Session com.example.app is now current")
}

func TestConfigureCommand_InvalidURL(t *testing.T) {
	sessions := &MockSessionService{
		SetCurrentFunc: func(cfg session.Config) error {
			return api.NewMalformedEndpoint(cfg.APIBaseURL, nil)
		},
	}

	_, err := execute(nil, nil, sessions,
		"configure", "--api-url", "api", "--token-url", "https://x/token", "--namespace", "ns")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrMalformedEndpoint)
}

func TestSessionFlag(t *testing.T) {
	tests := []struct {
		name    string
		load    func(string) (*session.Config, error)
		wantErr string
	}{
		{
			name: "known session",
			load: func(ns string) (*session.Config, error) { return &session.Config{Namespace: ns}, nil },
		},
		{
			name:    "unknown session",
			load:    func(string) (*session.Config, error) { return nil, nil },
			wantErr: `session "com.example.other" is not configured`,
		},
		{
			name:    "unreadable settings",
			load:    func(string) (*session.Config, error) { return nil, errors.New("bad json") },
			wantErr: "bad json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var loaded string
			sessions := &MockSessionService{
				LoadFunc: func(ns string) (*session.Config, error) {
					loaded = ns
					return tt.load(ns)
				},
			}

			_, err := execute(nil, nil, sessions, "logout", "--session", "com.example.other")

			assert.Equal(t, "com.example.other", loaded)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStatusCommand_Run(t *testing.T) {
	expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	auth := &MockAuthService{
		StatusFunc: func(context.Context) (*iface.AuthStatus, error) {
			return &iface.AuthStatus{
				Namespace:       "com.example.app",
				State:           iface.StateExpired,
				ExpiresAt:       expires,
				HasRefreshToken: true,
			}, nil
		},
	}

	t.Run("table", func(t *testing.T) {
		output, err := execute(auth, nil, nil, "status")
		require.NoError(t, err)

		for _, want := range []string{"com.example.app", "https://api.example.com/", "expired", "Refresh token", "yes", "Client credential", "no"} {
			assert.Contains(t, output, want)
		}
	})

	t.Run("json", func(t *testing.T) {
		output, err := execute(auth, nil, nil, "status", "-o", "json")
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(output), &got))
		assert.Equal(t, "expired", got["state"])
		assert.Equal(t, "com.example.app", got["namespace"])
		assert.Equal(t, "https://api.example.com/oauth/token", got["token_endpoint_url"])
		assert.Equal(t, true, got["has_refresh_token"])
		assert.Equal(t, "2030-01-02T03:04:05Z", got["expires_at"])
	})

	t.Run("no session", func(t *testing.T) {
		sessions := &MockSessionService{
			CurrentFunc: func() (*session.Config, error) { return nil, api.ErrSessionNotConfigured },
		}
		_, err := execute(auth, nil, sessions, "status")
		assert.ErrorIs(t, err, api.ErrSessionNotConfigured)
	})
}
