// Package config provides configuration management for netstack.
// It persists the public fields of every configured session, never secrets,
// so the current session can be restored at the next start.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const (
	// ConfigDirName is the name of the config directory
	ConfigDirName = ".netstack"

	// ConfigFileName is the name of the settings file
	ConfigFileName = "settings.json"
)

// SessionSettings are the public fields of a session, keyed by namespace on disk
type SessionSettings struct {
	// APIBaseURL is the base URL relative endpoints resolve against
	APIBaseURL string `json:"api_base_url"`

	// SecondaryAPIBaseURL serves endpoints under SecondaryPathPrefix
	SecondaryAPIBaseURL string `json:"secondary_api_base_url,omitempty"`

	// SecondaryPathPrefix routes matching endpoints to SecondaryAPIBaseURL
	SecondaryPathPrefix string `json:"secondary_path_prefix,omitempty"`

	// TokenEndpointURL is the OAuth2 token endpoint
	TokenEndpointURL string `json:"token_endpoint_url"`

	// Namespace scopes the stored credentials of the session
	Namespace string `json:"namespace"`

	// AppSlug identifies the application to the server
	AppSlug string `json:"app_slug"`
}

// Config represents the settings file stored on disk
type Config struct {
	// Current is the namespace of the last current session
	Current string `json:"current,omitempty"`

	// Sessions holds the public fields of every configured session
	Sessions map[string]SessionSettings `json:"sessions,omitempty"`

	// DeviceID identifies this installation to the device pairing grant
	DeviceID string `json:"device_id,omitempty"`
}

// Manager handles settings file operations
type Manager struct {
	mu         sync.Mutex
	configPath string
}

// NewManager creates a new configuration manager under the user's home directory
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	return NewManagerInDir(filepath.Join(homeDir, ConfigDirName)), nil
}

// NewManagerInDir creates a configuration manager keeping its file in dir
func NewManagerInDir(dir string) *Manager {
	return NewManagerWithPath(filepath.Join(dir, ConfigFileName))
}

// NewManagerWithPath creates a new configuration manager with a custom path
// This is useful for testing
func NewManagerWithPath(configPath string) *Manager {
	return &Manager{configPath: configPath}
}

// Load reads the configuration from disk
// Returns an empty config if the file doesn't exist
func (m *Manager) Load() (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

// Save writes the configuration to disk
func (m *Manager) Save(config *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(config)
}

// Delete removes the settings file entirely
func (m *Manager) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := os.Remove(m.configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// SaveSession stores the settings of a session and marks it current
func (m *Manager) SaveSession(settings SessionSettings) error {
	if settings.Namespace == "" {
		return errors.New("session settings need a namespace")
	}

	return m.update(func(config *Config) {
		if config.Sessions == nil {
			config.Sessions = make(map[string]SessionSettings)
		}
		config.Sessions[settings.Namespace] = settings
		config.Current = settings.Namespace
	})
}

// GetSession returns the stored settings for namespace.
// An empty namespace selects the last current session. Returns nil if none are stored.
func (m *Manager) GetSession(namespace string) (*SessionSettings, error) {
	config, err := m.Load()
	if err != nil {
		return nil, err
	}

	if namespace == "" {
		namespace = config.Current
	}
	settings, ok := config.Sessions[namespace]
	if !ok {
		return nil, nil
	}
	return &settings, nil
}

// RemoveSession forgets the settings of namespace
func (m *Manager) RemoveSession(namespace string) error {
	return m.update(func(config *Config) {
		delete(config.Sessions, namespace)
		if config.Current == namespace {
			config.Current = ""
		}
	})
}

// CurrentNamespace returns the namespace of the last current session
func (m *Manager) CurrentNamespace() (string, error) {
	config, err := m.Load()
	if err != nil {
		return "", err
	}
	return config.Current, nil
}

// DeviceID returns the installation's device id, generating and storing one on first use
func (m *Manager) DeviceID() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	config, err := m.load()
	if err != nil {
		return "", err
	}
	if config.DeviceID != "" {
		return config.DeviceID, nil
	}

	config.DeviceID = uuid.NewString()
	if err := m.save(config); err != nil {
		return "", fmt.Errorf("failed to save device id: %w", err)
	}
	return config.DeviceID, nil
}

// ConfigPath returns the path to the settings file
func (m *Manager) ConfigPath() string {
	return m.configPath
}

func (m *Manager) update(fn func(*Config)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	config, err := m.load()
	if err != nil {
		return err
	}
	fn(config)
	return m.save(config)
}

func (m *Manager) load() (*Config, error) {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", m.configPath, err)
	}
	return &config, nil
}

func (m *Manager) save(config *Config) error {
	// Ensure the config directory exists
	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	// Write with restricted permissions (owner read/write only)
	return os.WriteFile(m.configPath, data, 0600)
}
