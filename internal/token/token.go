// Package token models the OAuth2 credentials a session holds: the access/refresh
// token pair and the confidential client credential issued by device pairing.
// Both are persisted as flat records in a credential.Store under the session namespace.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/kamui-project/netstack/internal/credential"
)

const (
	accessTokenKey  = "access_token"
	expiresAtKey    = "expires_at"
	refreshTokenKey = "refresh_token"
	expiresInKey    = "expires_in"
	expiresKey      = "expires"
)

// pastExpiry is written by Expire so the token can never become valid again
var pastExpiry = time.Unix(0, 0).UTC()

// Token is an OAuth2 access token with its absolute expiration and optional refresh token.
// An empty RefreshToken means the server did not issue one.
type Token struct {
	AccessToken  string
	ExpiresAt    time.Time
	RefreshToken string
}

// FromServerPayload builds a token from a token endpoint response.
// The expiry is read from expires_in, or expires when expires_in is absent,
// and is converted to an absolute time by adding it to now.
func FromServerPayload(payload map[string]any, now time.Time) (*Token, error) {
	const source = "token response"

	accessToken, err := requiredString(payload, source, accessTokenKey)
	if err != nil {
		return nil, err
	}

	field := expiresInKey
	raw, ok := payload[expiresInKey]
	if !ok || raw == nil {
		field = expiresKey
		raw, ok = payload[expiresKey]
	}
	if !ok || raw == nil {
		return nil, mismatch(source, expiresInKey, "and expires are both missing")
	}
	secs, ok := seconds(raw)
	if !ok {
		return nil, mismatch(source, field, "is not a number of seconds")
	}

	refreshToken, err := optionalString(payload, source, refreshTokenKey)
	if err != nil {
		return nil, err
	}

	return &Token{
		AccessToken:  accessToken,
		ExpiresAt:    now.Add(time.Duration(secs) * time.Second),
		RefreshToken: refreshToken,
	}, nil
}

// Load reads the token stored for namespace.
// It returns nil and no error when nothing is stored.
func Load(ctx context.Context, store credential.Store, namespace string) (*Token, error) {
	const source = "stored token"

	record, err := store.Get(ctx, key(namespace))
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return nil, nil
		}
		if errors.Is(err, credential.ErrMalformedRecord) {
			return nil, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
		}
		return nil, err
	}

	accessToken, err := requiredString(record, source, accessTokenKey)
	if err != nil {
		return nil, err
	}

	rawExpiry, err := requiredString(record, source, expiresAtKey)
	if err != nil {
		return nil, err
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, rawExpiry)
	if err != nil {
		return nil, mismatch(source, expiresAtKey, "is not an RFC 3339 timestamp")
	}

	refreshRaw, ok := record[refreshTokenKey]
	if !ok {
		return nil, mismatch(source, refreshTokenKey, "is missing")
	}
	refreshToken, ok := refreshRaw.(string)
	if !ok {
		return nil, mismatch(source, refreshTokenKey, "is not a string")
	}

	return &Token{
		AccessToken:  accessToken,
		ExpiresAt:    expiresAt,
		RefreshToken: refreshToken,
	}, nil
}

// Persist writes the whole token record for namespace, replacing any previous token
func (t *Token) Persist(ctx context.Context, store credential.Store, namespace string) error {
	if t.AccessToken == "" {
		return mismatch("token", accessTokenKey, "is empty")
	}

	return store.Set(ctx, key(namespace), credential.Record{
		accessTokenKey:  t.AccessToken,
		expiresAtKey:    t.ExpiresAt.UTC().Format(time.RFC3339Nano),
		refreshTokenKey: t.RefreshToken,
	})
}

// Expire rewrites the stored token with an expiration in the past, keeping both
// the access and refresh tokens. It does nothing when no readable token is stored.
func Expire(ctx context.Context, store credential.Store, namespace string) error {
	current, err := Load(ctx, store, namespace)
	if err != nil || current == nil {
		return nil
	}
	return current.Expired().Persist(ctx, store, namespace)
}

// Delete removes the stored token for namespace
func Delete(ctx context.Context, store credential.Store, namespace string) error {
	return store.Delete(ctx, key(namespace))
}

// IsValid reports whether now is strictly before the expiration
func (t *Token) IsValid(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}

// HasRefreshToken reports whether the server issued a refresh token
func (t *Token) HasRefreshToken() bool {
	return t.RefreshToken != ""
}

// Expired returns a copy of the token whose expiration lies in the past
func (t *Token) Expired() *Token {
	return &Token{
		AccessToken:  t.AccessToken,
		ExpiresAt:    pastExpiry,
		RefreshToken: t.RefreshToken,
	}
}

// OAuth2 converts the token for use with golang.org/x/oauth2 clients
func (t *Token) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt,
	}
}

// String never prints token values so tokens are safe to log
func (t Token) String() string {
	return fmt.Sprintf("Token{AccessToken:[REDACTED] ExpiresAt:%s HasRefreshToken:%t}",
		t.ExpiresAt.Format(time.RFC3339), t.RefreshToken != "")
}

// GoString covers %#v formatting
func (t Token) GoString() string {
	return t.String()
}

func key(namespace string) credential.Key {
	return credential.Key{Namespace: namespace, Kind: credential.KindToken}
}
