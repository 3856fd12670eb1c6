package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kamui-project/netstack/internal/api"
	"github.com/kamui-project/netstack/internal/config"
	"github.com/kamui-project/netstack/internal/credential"
	"github.com/kamui-project/netstack/internal/token"
)

// Settings persists the public fields of sessions for restoring at start
type Settings interface {
	SaveSession(settings config.SessionSettings) error
	GetSession(namespace string) (*config.SessionSettings, error)
	DeviceID() (string, error)
}

// Scope owns the current session and the credential store its tokens live in.
// It is created once at start and handed to the api.Client and the auth flows.
type Scope struct {
	mu       sync.RWMutex
	current  *Config
	settings Settings
	store    credential.Store
	now      func() time.Time
	logger   zerolog.Logger
}

// Option configures a Scope
type Option func(*Scope)

// WithNow replaces the clock token validity is checked against
func WithNow(now func() time.Time) Option {
	return func(s *Scope) {
		s.now = now
	}
}

// WithLogger sets the logger for session changes
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scope) {
		s.logger = l
	}
}

// NewScope creates a scope without a current session.
// settings may be nil, in which case sessions are not persisted.
func NewScope(settings Settings, store credential.Store, opts ...Option) *Scope {
	s := &Scope{
		settings: settings,
		store:    store,
		now:      time.Now,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetCurrent validates cfg, installs it as the current session and persists its public fields
func (s *Scope) SetCurrent(cfg Config) error {
	if cfg.SecondaryPathPrefix == "" {
		cfg.SecondaryPathPrefix = DefaultSecondaryPathPrefix
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if s.settings != nil {
		if err := s.settings.SaveSession(cfg.settings()); err != nil {
			return fmt.Errorf("failed to save session settings: %w", err)
		}
	}

	s.mu.Lock()
	s.current = &cfg
	s.mu.Unlock()

	s.logger.Debug().Str("namespace", cfg.Namespace).Msg("session configured")
	return nil
}

// Load makes the session stored for namespace current and returns it.
// An empty namespace restores the last current session. It returns nil and no
// error when the session was never configured.
func (s *Scope) Load(namespace string) (*Config, error) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()

	if current != nil && (namespace == "" || current.Namespace == namespace) {
		cfg := *current
		return &cfg, nil
	}
	if s.settings == nil {
		return nil, nil
	}

	stored, err := s.settings.GetSession(namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to load session settings: %w", err)
	}
	if stored == nil {
		return nil, nil
	}

	cfg := fromSettings(stored)
	if cfg.SecondaryPathPrefix == "" {
		cfg.SecondaryPathPrefix = DefaultSecondaryPathPrefix
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("stored session %q is invalid: %w", stored.Namespace, err)
	}

	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()

	s.logger.Debug().Str("namespace", cfg.Namespace).Msg("session restored")
	out := *cfg
	return &out, nil
}

// Clear drops the current session. Persisted settings and credentials are kept.
func (s *Scope) Clear() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Current returns a copy of the current session config
func (s *Scope) Current() (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, &api.NetworkError{Kind: api.KindSessionNotConfigured}
	}
	cfg := *s.current
	return &cfg, nil
}

// Namespace returns the credential namespace of the current session
func (s *Scope) Namespace() (string, error) {
	cfg, err := s.Current()
	if err != nil {
		return "", err
	}
	return cfg.Namespace, nil
}

// ResolveURL turns endpoint into an absolute URL.
// Absolute endpoints are returned as is. Relative endpoints starting with the
// secondary path prefix, ignoring a leading slash, resolve against the
// secondary API when one is configured; everything else resolves against the
// primary API.
func (s *Scope) ResolveURL(endpoint string) (*url.URL, error) {
	cfg, err := s.Current()
	if err != nil {
		return nil, err
	}

	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, api.NewMalformedEndpoint(endpoint, err)
	}
	if ref.IsAbs() {
		if ref.Host == "" {
			return nil, api.NewMalformedEndpoint(endpoint, nil)
		}
		return ref, nil
	}

	baseURL := cfg.APIBaseURL
	if cfg.routesToSecondary(endpoint) {
		baseURL = cfg.SecondaryAPIBaseURL
	}
	base, err := absoluteURL(baseURL)
	if err != nil {
		return nil, err
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme == "" || resolved.Host == "" {
		return nil, api.NewMalformedEndpoint(endpoint, nil)
	}
	return resolved, nil
}

// TokenEndpoint returns the token endpoint of the current session
func (s *Scope) TokenEndpoint() (*url.URL, error) {
	cfg, err := s.Current()
	if err != nil {
		return nil, err
	}
	return absoluteURL(cfg.TokenEndpointURL)
}

// CurrentToken loads the stored token of the current session, valid or not.
// It returns nil and no error when no token is stored.
func (s *Scope) CurrentToken(ctx context.Context) (*token.Token, error) {
	namespace, err := s.Namespace()
	if err != nil {
		return nil, err
	}
	return token.Load(ctx, s.store, namespace)
}

// CurrentAccessToken returns the stored access token if it has not expired.
// Expiry is checked on every call.
func (s *Scope) CurrentAccessToken(ctx context.Context) (string, bool) {
	tok, err := s.CurrentToken(ctx)
	if err != nil {
		if !errors.Is(err, api.ErrSessionNotConfigured) {
			s.logger.Warn().Err(err).Msg("failed to read stored token")
		}
		return "", false
	}
	if tok == nil || !tok.IsValid(s.now()) {
		return "", false
	}
	return tok.AccessToken, true
}

// IsLoggedIn reports whether the current session holds a valid access token
func (s *Scope) IsLoggedIn(ctx context.Context) bool {
	_, ok := s.CurrentAccessToken(ctx)
	return ok
}

// DeviceID returns the persisted identifier of this installation
func (s *Scope) DeviceID() (string, error) {
	if s.settings == nil {
		return "", errors.New("no settings store to keep a device id in")
	}
	return s.settings.DeviceID()
}

// Store returns the credential store of the scope
func (s *Scope) Store() credential.Store {
	return s.store
}

// Now returns the current time on the scope's clock
func (s *Scope) Now() time.Time {
	return s.now()
}

func (c *Config) routesToSecondary(endpoint string) bool {
	if c.SecondaryAPIBaseURL == "" || c.SecondaryPathPrefix == "" {
		return false
	}
	return strings.HasPrefix(strings.TrimPrefix(endpoint, "/"), c.SecondaryPathPrefix)
}
