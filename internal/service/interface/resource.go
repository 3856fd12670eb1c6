package iface

import (
	"context"

	"github.com/kamui-project/netstack/internal/api"
)

// ResourceService defines the interface for authorized calls to resource endpoints
type ResourceService interface {
	// Request calls endpoint with the current access token, refreshing it first if it expired
	Request(ctx context.Context, method, endpoint string, params map[string]any) (*api.Payload, error)
}
