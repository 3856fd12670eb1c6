package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamui-project/netstack/internal/api"
	"github.com/kamui-project/netstack/internal/config"
	"github.com/kamui-project/netstack/internal/credential"
	"github.com/kamui-project/netstack/internal/token"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		APIBaseURL:          "https://api.example.com/v1/",
		SecondaryAPIBaseURL: "https://hyper.example.com/",
		TokenEndpointURL:    "https://auth.example.com/oauth/token",
		Namespace:           "com.example.app",
		AppSlug:             "example",
	}
}

func newTestScope(t *testing.T) (*Scope, *config.Manager, *credential.MemoryStore) {
	t.Helper()
	settings := config.NewManagerInDir(filepath.Join(t.TempDir(), config.ConfigDirName))
	store := credential.NewMemoryStore()
	return NewScope(settings, store, WithNow(func() time.Time { return testNow })), settings, store
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no secondary", mutate: func(c *Config) { c.SecondaryAPIBaseURL = "" }},
		{name: "missing namespace", mutate: func(c *Config) { c.Namespace = "" }, wantErr: ErrNamespaceRequired},
		{name: "relative api url", mutate: func(c *Config) { c.APIBaseURL = "api/v1" }, wantErr: api.ErrMalformedEndpoint},
		{name: "unparseable token url", mutate: func(c *Config) { c.TokenEndpointURL = "http://[::1" }, wantErr: api.ErrMalformedEndpoint},
		{name: "bad secondary", mutate: func(c *Config) { c.SecondaryAPIBaseURL = "/hyper" }, wantErr: api.ErrMalformedEndpoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestScope_NotConfigured(t *testing.T) {
	scope, _, _ := newTestScope(t)
	ctx := context.Background()

	_, err := scope.Current()
	assert.ErrorIs(t, err, api.ErrSessionNotConfigured)

	_, err = scope.ResolveURL("items")
	assert.ErrorIs(t, err, api.ErrSessionNotConfigured)

	_, err = scope.TokenEndpoint()
	assert.ErrorIs(t, err, api.ErrSessionNotConfigured)

	_, ok := scope.CurrentAccessToken(ctx)
	assert.False(t, ok)
	assert.False(t, scope.IsLoggedIn(ctx))
}

func TestScope_SetCurrentAndLoad(t *testing.T) {
	scope, settings, store := newTestScope(t)

	require.NoError(t, scope.SetCurrent(testConfig()))

	current, err := scope.Current()
	require.NoError(t, err)
	assert.Equal(t, DefaultSecondaryPathPrefix, current.SecondaryPathPrefix)

	stored, err := settings.GetSession("com.example.app")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "https://api.example.com/v1/", stored.APIBaseURL)

	// A fresh scope over the same settings restores the session at start
	restored := NewScope(settings, store)

	cfg, err := restored.Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, *current, *cfg)

	again, err := restored.Current()
	require.NoError(t, err)
	assert.Equal(t, "com.example.app", again.Namespace)

	missing, err := NewScope(settings, store).Load("com.example.other")
	require.NoError(t, err)
	assert.Nil(t, missing)

	restored.Clear()
	_, err = restored.Current()
	assert.ErrorIs(t, err, api.ErrSessionNotConfigured)
}

func TestScope_SetCurrentRejectsInvalid(t *testing.T) {
	scope, settings, _ := newTestScope(t)

	cfg := testConfig()
	cfg.APIBaseURL = "not a url"
	assert.ErrorIs(t, scope.SetCurrent(cfg), api.ErrMalformedEndpoint)

	_, err := scope.Current()
	assert.ErrorIs(t, err, api.ErrSessionNotConfigured)

	stored, err := settings.GetSession("")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestScope_ResolveURL(t *testing.T) {
	tests := []struct {
		name     string
		noHyper  bool
		endpoint string
		want     string
		wantErr  bool
	}{
		{name: "relative to primary", endpoint: "users/me", want: "https://api.example.com/v1/users/me"},
		{name: "query kept", endpoint: "users?page=2", want: "https://api.example.com/v1/users?page=2"},
		{name: "root relative", endpoint: "/status", want: "https://api.example.com/status"},
		{name: "secondary prefix", endpoint: "hyper/feed", want: "https://hyper.example.com/hyper/feed"},
		{name: "secondary prefix with slash", endpoint: "/hyper/feed", want: "https://hyper.example.com/hyper/feed"},
		{name: "prefix lookalike", endpoint: "hyperlink", want: "https://api.example.com/v1/hyperlink"},
		{name: "no secondary configured", noHyper: true, endpoint: "hyper/feed", want: "https://api.example.com/v1/hyper/feed"},
		{name: "absolute passes through", endpoint: "https://cdn.example.com/a.png", want: "https://cdn.example.com/a.png"},
		{name: "unparseable", endpoint: "%zz", wantErr: true},
		{name: "absolute without host", endpoint: "mailto:someone@example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, _, _ := newTestScope(t)
			cfg := testConfig()
			if tt.noHyper {
				cfg.SecondaryAPIBaseURL = ""
			}
			require.NoError(t, scope.SetCurrent(cfg))

			got, err := scope.ResolveURL(tt.endpoint)
			if tt.wantErr {
				assert.ErrorIs(t, err, api.ErrMalformedEndpoint)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestScope_CurrentAccessToken(t *testing.T) {
	scope, _, store := newTestScope(t)
	ctx := context.Background()
	require.NoError(t, scope.SetCurrent(testConfig()))

	_, ok := scope.CurrentAccessToken(ctx)
	assert.False(t, ok)

	tok := &token.Token{AccessToken: "abc", ExpiresAt: testNow.Add(time.Hour)}
	require.NoError(t, tok.Persist(ctx, store, "com.example.app"))

	accessToken, ok := scope.CurrentAccessToken(ctx)
	assert.True(t, ok)
	assert.Equal(t, "abc", accessToken)
	assert.True(t, scope.IsLoggedIn(ctx))

	// Expiry is evaluated at read time
	tok.ExpiresAt = testNow
	require.NoError(t, tok.Persist(ctx, store, "com.example.app"))
	_, ok = scope.CurrentAccessToken(ctx)
	assert.False(t, ok)
}

func TestScope_TokenSource(t *testing.T) {
	scope, _, store := newTestScope(t)
	ctx := context.Background()
	require.NoError(t, scope.SetCurrent(testConfig()))

	_, err := scope.TokenSource(ctx).Token()
	assert.ErrorIs(t, err, api.ErrAuthenticationRequired)

	expiry := testNow.Add(time.Hour)
	require.NoError(t, (&token.Token{AccessToken: "abc", ExpiresAt: expiry, RefreshToken: "r"}).Persist(ctx, store, "com.example.app"))

	got, err := scope.TokenSource(ctx).Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", got.AccessToken)
	assert.Equal(t, "Bearer", got.Type())
	assert.True(t, got.Expiry.Equal(expiry))
}

func TestScope_DeviceID(t *testing.T) {
	scope, _, _ := newTestScope(t)

	first, err := scope.DeviceID()
	require.NoError(t, err)
	second, err := scope.DeviceID()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = NewScope(nil, credential.NewMemoryStore()).DeviceID()
	assert.Error(t, err)
}

func TestScope_SecondaryRoutingEndToEnd(t *testing.T) {
	handler := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"server":"`+name+`","path":"`+r.URL.Path+`"}`)
		}
	}
	primary := httptest.NewServer(handler("primary"))
	defer primary.Close()
	secondary := httptest.NewServer(handler("secondary"))
	defer secondary.Close()

	scope, _, store := newTestScope(t)
	ctx := context.Background()
	require.NoError(t, scope.SetCurrent(Config{
		APIBaseURL:          primary.URL + "/",
		SecondaryAPIBaseURL: secondary.URL + "/",
		TokenEndpointURL:    primary.URL + "/oauth/token",
		Namespace:           "com.example.app",
	}))
	require.NoError(t, (&token.Token{AccessToken: "abc", ExpiresAt: testNow.Add(time.Hour)}).Persist(ctx, store, "com.example.app"))

	client := api.NewClient(api.WithSession(scope), api.WithDispatcher(api.Inline))

	payload, err := client.Get(ctx, "hyper/feed", nil)
	require.NoError(t, err)
	assert.Equal(t, "secondary", payload.Body["server"])
	assert.Equal(t, "/hyper/feed", payload.Body["path"])

	payload, err = client.Get(ctx, "users/me", nil)
	require.NoError(t, err)
	assert.Equal(t, "primary", payload.Body["server"])
	assert.Equal(t, "/users/me", payload.Body["path"])
}
