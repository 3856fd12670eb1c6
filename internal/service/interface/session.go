package iface

import "github.com/kamui-project/netstack/internal/session"

// SessionService defines the interface for configuring the current session
type SessionService interface {
	// SetCurrent installs and persists the session configuration
	SetCurrent(cfg session.Config) error

	// Load restores a persisted session; an empty namespace restores the last one
	Load(namespace string) (*session.Config, error)

	// Current returns the current session configuration
	Current() (*session.Config, error)
}
