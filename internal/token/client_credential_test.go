package token

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamui-project/netstack/internal/credential"
)

func TestClientCredential_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := credential.NewMemoryStore()

	client, err := ClientCredentialFromServerPayload(map[string]any{
		"access_token":  "ignored",
		"client_id":     "device-client",
		"client_secret": "s3cret",
	})
	require.NoError(t, err)
	require.NoError(t, client.Persist(ctx, store, "ns"))

	loaded, err := LoadClientCredential(ctx, store, "ns")
	require.NoError(t, err)
	assert.Equal(t, client, loaded)

	// Token and client records do not overwrite each other
	tok, err := Load(ctx, store, "ns")
	require.NoError(t, err)
	assert.Nil(t, tok)

	require.NoError(t, DeleteClientCredential(ctx, store, "ns"))
	require.NoError(t, DeleteClientCredential(ctx, store, "ns"))

	loaded, err = LoadClientCredential(ctx, store, "ns")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestClientCredential_Invalid(t *testing.T) {
	_, err := ClientCredentialFromServerPayload(map[string]any{"client_id": "id"})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	ctx := context.Background()
	store := credential.NewMemoryStore()
	require.NoError(t, store.Set(ctx, credential.Key{Namespace: "ns", Kind: credential.KindOAuthClient}, credential.Record{"client_id": 1}))

	_, err = LoadClientCredential(ctx, store, "ns")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestClientCredential_String(t *testing.T) {
	s := fmt.Sprint(ClientCredential{ID: "id", Secret: "s3cret"})
	assert.Contains(t, s, "id")
	assert.NotContains(t, s, "s3cret")
}
