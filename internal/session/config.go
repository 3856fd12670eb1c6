// Package session holds the single current session: its endpoints, the
// namespace its credentials are stored under and the app identity it presents.
package session

import (
	"errors"
	"net/url"

	"github.com/kamui-project/netstack/internal/api"
	"github.com/kamui-project/netstack/internal/config"
)

// DefaultSecondaryPathPrefix routes endpoints to the secondary API when it is configured
const DefaultSecondaryPathPrefix = "hyper/"

// ErrNamespaceRequired is returned when a session config has no namespace
var ErrNamespaceRequired = errors.New("session namespace is required")

// Config is the configuration of one session
type Config struct {
	APIBaseURL          string
	SecondaryAPIBaseURL string
	SecondaryPathPrefix string
	TokenEndpointURL    string
	Namespace           string
	AppSlug             string
}

// Validate checks that the URLs are absolute and a namespace is set
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return ErrNamespaceRequired
	}
	if _, err := absoluteURL(c.APIBaseURL); err != nil {
		return err
	}
	if _, err := absoluteURL(c.TokenEndpointURL); err != nil {
		return err
	}
	if c.SecondaryAPIBaseURL != "" {
		if _, err := absoluteURL(c.SecondaryAPIBaseURL); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) settings() config.SessionSettings {
	return config.SessionSettings{
		APIBaseURL:          c.APIBaseURL,
		SecondaryAPIBaseURL: c.SecondaryAPIBaseURL,
		SecondaryPathPrefix: c.SecondaryPathPrefix,
		TokenEndpointURL:    c.TokenEndpointURL,
		Namespace:           c.Namespace,
		AppSlug:             c.AppSlug,
	}
}

func fromSettings(s *config.SessionSettings) *Config {
	return &Config{
		APIBaseURL:          s.APIBaseURL,
		SecondaryAPIBaseURL: s.SecondaryAPIBaseURL,
		SecondaryPathPrefix: s.SecondaryPathPrefix,
		TokenEndpointURL:    s.TokenEndpointURL,
		Namespace:           s.Namespace,
		AppSlug:             s.AppSlug,
	}
}

// absoluteURL parses raw and requires a scheme and host
func absoluteURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, api.NewMalformedEndpoint(raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, api.NewMalformedEndpoint(raw, nil)
	}
	return u, nil
}
