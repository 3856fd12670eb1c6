package cmd

import (
	"bytes"
	"context"

	"github.com/kamui-project/netstack/internal/api"
	"github.com/kamui-project/netstack/internal/di"
	iface "github.com/kamui-project/netstack/internal/service/interface"
	"github.com/kamui-project/netstack/internal/session"
)

// MockAuthService is a mock implementation of iface.AuthService
type MockAuthService struct {
	AuthenticateFunc                func(ctx context.Context, username, password string) error
	AuthenticateWithPairingCodeFunc func(ctx context.Context, code string) error
	RefreshFunc                     func(ctx context.Context) error
	PersistTokenFunc                func(ctx context.Context, payload map[string]any) error
	LogoutFunc                      func(ctx context.Context) error
	ExpireAccessTokenFunc           func(ctx context.Context) error
	StatusFunc                      func(ctx context.Context) (*iface.AuthStatus, error)
	IsLoggedInFunc                  func(ctx context.Context) bool
	EnsureAuthenticatedFunc         func(ctx context.Context) error
}

func (m *MockAuthService) Authenticate(ctx context.Context, username, password string) error {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, username, password)
	}
	return nil
}

func (m *MockAuthService) AuthenticateWithPairingCode(ctx context.Context, code string) error {
	if m.AuthenticateWithPairingCodeFunc != nil {
		return m.AuthenticateWithPairingCodeFunc(ctx, code)
	}
	return nil
}

func (m *MockAuthService) Refresh(ctx context.Context) error {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx)
	}
	return nil
}

func (m *MockAuthService) PersistToken(ctx context.Context, payload map[string]any) error {
	if m.PersistTokenFunc != nil {
		return m.PersistTokenFunc(ctx, payload)
	}
	return nil
}

func (m *MockAuthService) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *MockAuthService) ExpireAccessToken(ctx context.Context) error {
	if m.ExpireAccessTokenFunc != nil {
		return m.ExpireAccessTokenFunc(ctx)
	}
	return nil
}

func (m *MockAuthService) Status(ctx context.Context) (*iface.AuthStatus, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx)
	}
	return &iface.AuthStatus{State: iface.StateUnauthenticated}, nil
}

func (m *MockAuthService) IsLoggedIn(ctx context.Context) bool {
	if m.IsLoggedInFunc != nil {
		return m.IsLoggedInFunc(ctx)
	}
	return true
}

func (m *MockAuthService) EnsureAuthenticated(ctx context.Context) error {
	if m.EnsureAuthenticatedFunc != nil {
		return m.EnsureAuthenticatedFunc(ctx)
	}
	return nil
}

// MockResourceService is a mock implementation of iface.ResourceService
type MockResourceService struct {
	RequestFunc func(ctx context.Context, method, endpoint string, params map[string]any) (*api.Payload, error)
}

func (m *MockResourceService) Request(ctx context.Context, method, endpoint string, params map[string]any) (*api.Payload, error) {
	if m.RequestFunc != nil {
		return m.RequestFunc(ctx, method, endpoint, params)
	}
	return &api.Payload{Body: map[string]any{}}, nil
}

// MockSessionService is a mock implementation of iface.SessionService
type MockSessionService struct {
	SetCurrentFunc func(cfg session.Config) error
	LoadFunc       func(namespace string) (*session.Config, error)
	CurrentFunc    func() (*session.Config, error)
}

func (m *MockSessionService) SetCurrent(cfg session.Config) error {
	if m.SetCurrentFunc != nil {
		return m.SetCurrentFunc(cfg)
	}
	return nil
}

func (m *MockSessionService) Load(namespace string) (*session.Config, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(namespace)
	}
	return nil, nil
}

func (m *MockSessionService) Current() (*session.Config, error) {
	if m.CurrentFunc != nil {
		return m.CurrentFunc()
	}
	return &session.Config{
		APIBaseURL:       "https://api.example.com/",
		TokenEndpointURL: "https://api.example.com/oauth/token",
		Namespace:        "com.example.app",
	}, nil
}

// execute runs the CLI with mock services and returns what it printed to stdout
func execute(auth iface.AuthService, resources iface.ResourceService, sessions iface.SessionService, args ...string) (string, error) {
	if auth == nil {
		auth = &MockAuthService{}
	}
	if resources == nil {
		resources = &MockResourceService{}
	}
	if sessions == nil {
		sessions = &MockSessionService{}
	}

	root := NewRootCommand()
	root.SetContainer(di.NewContainerWithServices(auth, resources, sessions))

	var stdout, stderr bytes.Buffer
	root.Command().SetOut(&stdout)
	root.Command().SetErr(&stderr)
	root.Command().SetIn(&bytes.Buffer{})
	root.Command().SetArgs(args)

	err := root.Command().ExecuteContext(context.Background())
	return stdout.String(), err
}
