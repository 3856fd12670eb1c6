// Package di provides dependency injection for netstack.
// It contains the service container and factory functions.
package di

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/kamui-project/netstack/internal/api"
	"github.com/kamui-project/netstack/internal/config"
	"github.com/kamui-project/netstack/internal/credential"
	"github.com/kamui-project/netstack/internal/logging"
	"github.com/kamui-project/netstack/internal/service"
	iface "github.com/kamui-project/netstack/internal/service/interface"
	"github.com/kamui-project/netstack/internal/session"
)

// Container holds all service dependencies for the CLI.
// Services are accessed via interfaces to enable mocking in tests.
type Container struct {
	env             *config.Env
	logger          zerolog.Logger
	configManager   *config.Manager
	store           credential.Store
	scope           *session.Scope
	client          *api.Client
	authService     iface.AuthService
	resourceService iface.ResourceService
	sessionService  iface.SessionService
}

// NewContainer creates a new dependency container from the process environment.
// version ends up in the User-Agent header.
func NewContainer(version string) (*Container, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	return NewContainerFromEnv(env, version, os.Stderr)
}

// NewContainerFromEnv creates a container from explicit settings, logging to logOutput
func NewContainerFromEnv(env *config.Env, version string, logOutput io.Writer) (*Container, error) {
	logger := logging.New(logOutput, env.Debug)

	// Settings file
	var configManager *config.Manager
	if env.ConfigDir != "" {
		configManager = config.NewManagerInDir(env.ConfigDir)
	} else {
		var err error
		if configManager, err = config.NewManager(); err != nil {
			return nil, fmt.Errorf("failed to locate settings: %w", err)
		}
	}

	// Credential store
	var store credential.Store
	if env.Transient {
		store = credential.NewMemoryStore()
	} else {
		keyringService := env.KeyringService
		if keyringService == "" {
			keyringService = credential.DefaultKeyringService
		}
		store = credential.NewKeyringStore(keyringService, logger)
	}

	scope := session.NewScope(configManager, store, session.WithLogger(logger))

	// Restore the last current session, if any
	if _, err := scope.Load(""); err != nil {
		logger.Warn().Err(err).Msg("could not restore the last session")
	}

	opts := []api.Option{
		api.WithSession(scope),
		api.WithLogger(logger),
		api.WithDebug(env.Debug),
		api.WithUserAgent("netstack-" + version),
		api.WithAcceptLanguage(config.AcceptLanguage(os.LookupEnv)),
		api.WithDispatcher(api.Inline),
	}
	if env.Timeout > 0 {
		opts = append(opts, api.WithTimeout(env.Timeout))
	}
	if env.FixturesPath != "" {
		transport, err := api.LoadFixtures(env.FixturesPath)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("path", env.FixturesPath).Msg("replaying HTTP responses from fixtures")
		opts = append(opts, api.WithTransport(transport))
	}
	client := api.NewClient(opts...)

	authService := service.NewAuthService(scope, client, service.WithAuthLogger(logger))

	return &Container{
		env:             env,
		logger:          logger,
		configManager:   configManager,
		store:           store,
		scope:           scope,
		client:          client,
		authService:     authService,
		resourceService: service.NewResourceService(authService, client),
		sessionService:  scope,
	}, nil
}

// NewContainerWithServices creates a container with custom service implementations.
// This is useful for testing with mock services.
func NewContainerWithServices(
	authService iface.AuthService,
	resourceService iface.ResourceService,
	sessionService iface.SessionService,
) *Container {
	return &Container{
		logger:          zerolog.Nop(),
		authService:     authService,
		resourceService: resourceService,
		sessionService:  sessionService,
	}
}

// AuthService returns the authentication service
func (c *Container) AuthService() iface.AuthService {
	return c.authService
}

// ResourceService returns the resource service
func (c *Container) ResourceService() iface.ResourceService {
	return c.resourceService
}

// SessionService returns the session service
func (c *Container) SessionService() iface.SessionService {
	return c.sessionService
}

// ConfigManager returns the config manager
func (c *Container) ConfigManager() *config.Manager {
	return c.configManager
}

// Client returns the request pipeline
func (c *Container) Client() *api.Client {
	return c.client
}

// Logger returns the shared logger
func (c *Container) Logger() zerolog.Logger {
	return c.logger
}
