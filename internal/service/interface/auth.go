// Package iface defines service interfaces for netstack.
// These interfaces enable dependency injection and mocking for tests.
package iface

import (
	"context"
	"time"
)

// AuthState is the position of the current session in the authentication lifecycle
type AuthState string

const (
	// StateUnauthenticated means no token is stored
	StateUnauthenticated AuthState = "unauthenticated"

	// StateAuthenticated means a valid token is stored
	StateAuthenticated AuthState = "authenticated"

	// StateExpired means a token is stored but no longer valid
	StateExpired AuthState = "expired"
)

// AuthStatus describes the stored credentials of the current session
type AuthStatus struct {
	Namespace           string    `json:"namespace"`
	State               AuthState `json:"state"`
	ExpiresAt           time.Time `json:"expires_at,omitzero"`
	HasRefreshToken     bool      `json:"has_refresh_token"`
	HasClientCredential bool      `json:"has_client_credential"`
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Authenticate performs the password grant and stores the token
	Authenticate(ctx context.Context, username, password string) error

	// AuthenticateWithPairingCode performs the device grant and stores the token and client credential
	AuthenticateWithPairingCode(ctx context.Context, code string) error

	// Refresh exchanges the stored refresh token for a new token
	Refresh(ctx context.Context) error

	// PersistToken stores a token response received out of band
	PersistToken(ctx context.Context, payload map[string]any) error

	// Logout clears stored credentials
	Logout(ctx context.Context) error

	// ExpireAccessToken forces the stored token into the expired state
	ExpireAccessToken(ctx context.Context) error

	// Status reports the stored credentials of the current session
	Status(ctx context.Context) (*AuthStatus, error)

	// IsLoggedIn checks if the user is currently authenticated
	IsLoggedIn(ctx context.Context) bool

	// EnsureAuthenticated checks login status and refreshes token if needed
	EnsureAuthenticated(ctx context.Context) error
}
