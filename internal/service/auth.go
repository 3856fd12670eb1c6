package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/kamui-project/netstack/internal/api"
	"github.com/kamui-project/netstack/internal/session"
	iface "github.com/kamui-project/netstack/internal/service/interface"
	"github.com/kamui-project/netstack/internal/token"
)

const (
	grantPassword     = "password"
	grantDevice       = "device"
	grantRefreshToken = "refresh_token"
)

// authService implements iface.AuthService.
// Flows on one service run one at a time; concurrent refreshes share a single request.
type authService struct {
	scope    *session.Scope
	client   *api.Client
	logger   zerolog.Logger
	hostname func() (string, error)

	mu      sync.Mutex
	refresh singleflight.Group
}

// AuthOption configures the authentication service
type AuthOption func(*authService)

// WithAuthLogger sets the logger for flow events
func WithAuthLogger(l zerolog.Logger) AuthOption {
	return func(s *authService) {
		s.logger = l
	}
}

// WithHostname replaces the lookup of the device name sent when pairing
func WithHostname(fn func() (string, error)) AuthOption {
	return func(s *authService) {
		s.hostname = fn
	}
}

// NewAuthService creates a new authentication service
func NewAuthService(scope *session.Scope, client *api.Client, opts ...AuthOption) iface.AuthService {
	s := &authService{
		scope:    scope,
		client:   client,
		logger:   zerolog.Nop(),
		hostname: os.Hostname,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate performs the password grant and stores the token
func (s *authService) Authenticate(ctx context.Context, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	namespace, err := s.scope.Namespace()
	if err != nil {
		return err
	}

	// Never serve responses cached for another user
	s.client.PurgeCache()
	defer s.client.PurgeCache()

	payload, err := s.requestToken(ctx, url.Values{
		"grant_type": {grantPassword},
		"username":   {username},
		"password":   {password},
	})
	if err != nil {
		return err
	}

	tok, err := s.saveToken(ctx, namespace, payload.Body)
	if err != nil {
		return err
	}

	s.logger.Info().Str("namespace", namespace).Str("grant", grantPassword).Time("expires_at", tok.ExpiresAt).Msg("authenticated")
	return nil
}

// AuthenticateWithPairingCode performs the device grant and stores the token and client credential
func (s *authService) AuthenticateWithPairingCode(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.scope.Current()
	if err != nil {
		return err
	}

	deviceID, err := s.scope.DeviceID()
	if err != nil {
		return fmt.Errorf("failed to get device id: %w", err)
	}
	deviceName, err := s.hostname()
	if err != nil || deviceName == "" {
		deviceName = "netstack"
	}

	s.client.PurgeCache()
	defer s.client.PurgeCache()

	payload, err := s.requestToken(ctx, url.Values{
		"grant_type":  {grantDevice},
		"code":        {code},
		"client_id":   {cfg.AppSlug},
		"device_id":   {deviceID},
		"device_name": {deviceName},
	})
	if err != nil {
		return err
	}

	// Decode both before storing either; a failed client write removes the token again
	tok, err := token.FromServerPayload(payload.Body, s.scope.Now())
	if err != nil {
		return err
	}
	client, err := token.ClientCredentialFromServerPayload(payload.Body)
	if err != nil {
		return err
	}

	if err := tok.Persist(ctx, s.scope.Store(), cfg.Namespace); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if err := client.Persist(ctx, s.scope.Store(), cfg.Namespace); err != nil {
		if delErr := token.Delete(ctx, s.scope.Store(), cfg.Namespace); delErr != nil {
			s.logger.Warn().Str("namespace", cfg.Namespace).Err(delErr).Msg("failed to roll back paired token")
		}
		return fmt.Errorf("failed to save client credential: %w", err)
	}

	s.logger.Info().Str("namespace", cfg.Namespace).Str("grant", grantDevice).Str("device_id", deviceID).Msg("device paired")
	return nil
}

// Refresh exchanges the stored refresh token for a new token.
// Concurrent calls for the same session share one token request.
func (s *authService) Refresh(ctx context.Context) error {
	namespace, err := s.scope.Namespace()
	if err != nil {
		return err
	}

	_, err, shared := s.refresh.Do(namespace, func() (any, error) {
		return nil, s.refreshToken(ctx, namespace)
	})
	if shared {
		s.logger.Debug().Str("namespace", namespace).Msg("joined in-flight refresh")
	}
	return err
}

func (s *authService) refreshToken(ctx context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := token.Load(ctx, s.scope.Store(), namespace)
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}
	if current == nil || !current.HasRefreshToken() {
		return &api.NetworkError{Kind: api.KindRefreshTokenMissing}
	}

	client, err := token.LoadClientCredential(ctx, s.scope.Store(), namespace)
	if err != nil {
		return fmt.Errorf("failed to load client credential: %w", err)
	}
	if client == nil {
		return &api.NetworkError{Kind: api.KindClientCredentialsMissing}
	}

	payload, err := s.requestToken(ctx, url.Values{
		"grant_type":    {grantRefreshToken},
		"refresh_token": {current.RefreshToken},
		"client_id":     {client.ID},
		"client_secret": {client.Secret},
	})
	if err != nil {
		return err
	}

	// The response replaces the token wholesale, even when it carries no refresh token
	tok, err := s.saveToken(ctx, namespace, payload.Body)
	if err != nil {
		return err
	}

	s.logger.Info().Str("namespace", namespace).Str("grant", grantRefreshToken).Bool("has_refresh_token", tok.HasRefreshToken()).Msg("token refreshed")
	return nil
}

// PersistToken stores a token response received out of band
func (s *authService) PersistToken(ctx context.Context, payload map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	namespace, err := s.scope.Namespace()
	if err != nil {
		return err
	}

	_, err = s.saveToken(ctx, namespace, payload)
	return err
}

// Logout clears stored credentials. It succeeds when nothing is stored.
func (s *authService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	namespace, err := s.scope.Namespace()
	if err != nil {
		return err
	}

	s.client.PurgeCache()

	if err := token.Delete(ctx, s.scope.Store(), namespace); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if err := token.DeleteClientCredential(ctx, s.scope.Store(), namespace); err != nil {
		return fmt.Errorf("failed to delete client credential: %w", err)
	}

	s.logger.Info().Str("namespace", namespace).Msg("logged out")
	return nil
}

// ExpireAccessToken forces the stored token into the expired state, keeping the refresh token
func (s *authService) ExpireAccessToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	namespace, err := s.scope.Namespace()
	if err != nil {
		return err
	}
	return token.Expire(ctx, s.scope.Store(), namespace)
}

// Status reports the stored credentials of the current session
func (s *authService) Status(ctx context.Context) (*iface.AuthStatus, error) {
	namespace, err := s.scope.Namespace()
	if err != nil {
		return nil, err
	}

	tok, err := token.Load(ctx, s.scope.Store(), namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	client, err := token.LoadClientCredential(ctx, s.scope.Store(), namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to load client credential: %w", err)
	}

	status := &iface.AuthStatus{
		Namespace:           namespace,
		State:               iface.StateUnauthenticated,
		HasClientCredential: client != nil,
	}
	if tok == nil {
		return status, nil
	}

	status.ExpiresAt = tok.ExpiresAt
	status.HasRefreshToken = tok.HasRefreshToken()
	if tok.IsValid(s.scope.Now()) {
		status.State = iface.StateAuthenticated
	} else {
		status.State = iface.StateExpired
	}
	return status, nil
}

// IsLoggedIn checks if the current session holds a valid access token
func (s *authService) IsLoggedIn(ctx context.Context) bool {
	return s.scope.IsLoggedIn(ctx)
}

// EnsureAuthenticated checks login status and refreshes token if needed
func (s *authService) EnsureAuthenticated(ctx context.Context) error {
	tok, err := s.scope.CurrentToken(ctx)
	if err != nil {
		return err
	}

	// Check if we have any token
	if tok == nil {
		return &api.NetworkError{Kind: api.KindAuthenticationRequired}
	}

	// Check if access token is still valid
	if tok.IsValid(s.scope.Now()) {
		return nil
	}

	// Token expired, try to refresh
	if err := s.Refresh(ctx); err != nil {
		return fmt.Errorf("session expired: %w", err)
	}
	return nil
}

// requestToken posts a form to the token endpoint of the current session
func (s *authService) requestToken(ctx context.Context, form url.Values) (*api.Payload, error) {
	endpoint, err := s.scope.TokenEndpoint()
	if err != nil {
		return nil, err
	}

	return s.client.Do(ctx, &api.Request{
		Method: http.MethodPost,
		URL:    endpoint,
		Form:   form,
	})
}

// saveToken decodes a token response and stores it for namespace
func (s *authService) saveToken(ctx context.Context, namespace string, payload map[string]any) (*token.Token, error) {
	tok, err := token.FromServerPayload(payload, s.scope.Now())
	if err != nil {
		return nil, err
	}
	if err := tok.Persist(ctx, s.scope.Store(), namespace); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}
	return tok, nil
}
