package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by LoadEnv
const (
	EnvDebug          = "NETSTACK_DEBUG"
	EnvFixtures       = "NETSTACK_FIXTURES"
	EnvConfigDir      = "NETSTACK_CONFIG_DIR"
	EnvKeyringService = "NETSTACK_KEYRING_SERVICE"
	EnvTimeout        = "NETSTACK_TIMEOUT"
	EnvTransient      = "NETSTACK_TRANSIENT"
)

// Env holds the runtime toggles taken from the environment
type Env struct {
	// Debug enables the per-request log line
	Debug bool

	// FixturesPath replays HTTP responses from a YAML file instead of the network
	FixturesPath string

	// ConfigDir overrides the settings directory
	ConfigDir string

	// KeyringService overrides the keyring service credentials are stored under
	KeyringService string

	// Timeout overrides the per-request timeout; zero keeps the default
	Timeout time.Duration

	// Transient keeps credentials in memory only
	Transient bool
}

// LoadEnv loads the given dotenv files (".env" when none are given) into the
// process environment and reads the toggles. Missing dotenv files are ignored.
// Variables already set in the environment take precedence over the files.
func LoadEnv(files ...string) (*Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return ParseEnv(os.LookupEnv)
}

// ParseEnv reads the toggles through lookup
func ParseEnv(lookup func(string) (string, bool)) (*Env, error) {
	env := &Env{}

	var err error
	if env.Debug, err = parseBool(lookup, EnvDebug); err != nil {
		return nil, err
	}
	if env.Transient, err = parseBool(lookup, EnvTransient); err != nil {
		return nil, err
	}

	env.FixturesPath, _ = lookup(EnvFixtures)
	env.ConfigDir, _ = lookup(EnvConfigDir)
	env.KeyringService, _ = lookup(EnvKeyringService)

	if raw, ok := lookup(EnvTimeout); ok && raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		if timeout <= 0 {
			return nil, fmt.Errorf("invalid %s: must be positive", EnvTimeout)
		}
		env.Timeout = timeout
	}

	return env, nil
}

func parseBool(lookup func(string) (string, bool), name string) (bool, error) {
	raw, ok := lookup(name)
	if !ok || raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}
