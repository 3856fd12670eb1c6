package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/kamui-project/netstack/internal/credential"
)

const (
	clientIDKey     = "client_id"
	clientSecretKey = "client_secret"
)

// ClientCredential is the confidential OAuth2 client issued to this device by pairing.
// It authenticates refresh grants.
type ClientCredential struct {
	ID     string
	Secret string
}

// ClientCredentialFromServerPayload reads client_id and client_secret from a pairing response
func ClientCredentialFromServerPayload(payload map[string]any) (*ClientCredential, error) {
	const source = "pairing response"

	id, err := requiredString(payload, source, clientIDKey)
	if err != nil {
		return nil, err
	}
	secret, err := requiredString(payload, source, clientSecretKey)
	if err != nil {
		return nil, err
	}
	return &ClientCredential{ID: id, Secret: secret}, nil
}

// LoadClientCredential reads the client credential stored for namespace.
// It returns nil and no error when nothing is stored.
func LoadClientCredential(ctx context.Context, store credential.Store, namespace string) (*ClientCredential, error) {
	const source = "stored client credential"

	record, err := store.Get(ctx, clientKey(namespace))
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return nil, nil
		}
		if errors.Is(err, credential.ErrMalformedRecord) {
			return nil, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
		}
		return nil, err
	}

	id, err := requiredString(record, source, clientIDKey)
	if err != nil {
		return nil, err
	}
	secret, err := requiredString(record, source, clientSecretKey)
	if err != nil {
		return nil, err
	}
	return &ClientCredential{ID: id, Secret: secret}, nil
}

// Persist writes the client credential record for namespace
func (c *ClientCredential) Persist(ctx context.Context, store credential.Store, namespace string) error {
	return store.Set(ctx, clientKey(namespace), credential.Record{
		clientIDKey:     c.ID,
		clientSecretKey: c.Secret,
	})
}

// DeleteClientCredential removes the stored client credential for namespace
func DeleteClientCredential(ctx context.Context, store credential.Store, namespace string) error {
	return store.Delete(ctx, clientKey(namespace))
}

// String never prints the secret
func (c ClientCredential) String() string {
	return fmt.Sprintf("ClientCredential{ID:%s Secret:[REDACTED]}", c.ID)
}

func clientKey(namespace string) credential.Key {
	return credential.Key{Namespace: namespace, Kind: credential.KindOAuthClient}
}
