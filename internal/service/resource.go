package service

import (
	"context"

	"github.com/kamui-project/netstack/internal/api"
	iface "github.com/kamui-project/netstack/internal/service/interface"
)

// resourceService implements iface.ResourceService
type resourceService struct {
	authService iface.AuthService
	client      *api.Client
}

// NewResourceService creates a new resource service
func NewResourceService(authService iface.AuthService, client *api.Client) iface.ResourceService {
	return &resourceService{
		authService: authService,
		client:      client,
	}
}

// Request calls endpoint with the current access token, refreshing it first if it expired
func (s *resourceService) Request(ctx context.Context, method, endpoint string, params map[string]any) (*api.Payload, error) {
	// Ensure we're authenticated (refresh token if needed)
	if err := s.authService.EnsureAuthenticated(ctx); err != nil {
		return nil, err
	}

	return s.client.Authorized(ctx, method, endpoint, params)
}
