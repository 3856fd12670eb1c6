package di

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamui-project/netstack/internal/config"
	"github.com/kamui-project/netstack/internal/credential"
	"github.com/kamui-project/netstack/internal/session"
)

const fixtures = `
- method: POST
  path: /oauth/token
  body: '{"access_token":"abc","expires_in":3600}'
- method: GET
  path: /api/me
  body: '{"name":"ann"}'
`

func TestNewContainerFromEnv_Transient(t *testing.T) {
	dir := t.TempDir()
	fixturePath := filepath.Join(dir, "fixtures.yaml")
	require.NoError(t, os.WriteFile(fixturePath, []byte(fixtures), 0600))

	var logs bytes.Buffer
	c, err := NewContainerFromEnv(&config.Env{
		Debug:        true,
		FixturesPath: fixturePath,
		ConfigDir:    filepath.Join(dir, "settings"),
		Transient:    true,
	}, "1.0.0", &logs)
	require.NoError(t, err)

	assert.IsType(t, &credential.MemoryStore{}, c.store)
	assert.Equal(t, filepath.Join(dir, "settings", config.ConfigFileName), c.ConfigManager().ConfigPath())

	ctx := context.Background()
	require.NoError(t, c.SessionService().SetCurrent(session.Config{
		APIBaseURL:       "https://fixtures.invalid/api/",
		TokenEndpointURL: "https://fixtures.invalid/oauth/token",
		Namespace:        "com.example.app",
	}))

	require.NoError(t, c.AuthService().Authenticate(ctx, "ann", "pw"))
	assert.True(t, c.AuthService().IsLoggedIn(ctx))

	payload, err := c.ResourceService().Request(ctx, http.MethodGet, "me", nil)
	require.NoError(t, err)
	assert.Equal(t, "ann", payload.Body["name"])

	assert.Contains(t, logs.String(), "/oauth/token")
	assert.NotContains(t, logs.String(), "password=pw")
}

func TestNewContainerFromEnv_RestoresLastSession(t *testing.T) {
	dir := t.TempDir()
	settings := config.NewManagerInDir(dir)
	require.NoError(t, settings.SaveSession(config.SessionSettings{
		APIBaseURL:       "https://api.example.com/",
		TokenEndpointURL: "https://api.example.com/oauth/token",
		Namespace:        "com.example.app",
	}))

	c, err := NewContainerFromEnv(&config.Env{ConfigDir: dir, Transient: true}, "dev", &bytes.Buffer{})
	require.NoError(t, err)

	current, err := c.SessionService().Current()
	require.NoError(t, err)
	assert.Equal(t, "com.example.app", current.Namespace)
}

func TestNewContainerFromEnv_BadFixtures(t *testing.T) {
	_, err := NewContainerFromEnv(&config.Env{
		ConfigDir:    t.TempDir(),
		Transient:    true,
		FixturesPath: filepath.Join(t.TempDir(), "missing.yaml"),
	}, "dev", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewContainerWithServices(t *testing.T) {
	c := NewContainerWithServices(nil, nil, nil)
	assert.Nil(t, c.Client())
	assert.Nil(t, c.AuthService())
	assert.Nil(t, c.ConfigManager())
}
