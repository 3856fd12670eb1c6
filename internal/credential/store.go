// Package credential provides secure key/value persistence for session secrets.
// Records are small flat maps addressed by a namespace and a record kind.
package credential

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies which record of a session namespace is addressed
type Kind string

const (
	// KindToken is the OAuth2 access/refresh token record
	KindToken Kind = "token"

	// KindOAuthClient is the confidential client id/secret record
	KindOAuthClient Kind = "oauthClient"
)

var (
	// ErrNotFound is returned by Get when no record exists for a key
	ErrNotFound = errors.New("credential not found")

	// ErrMalformedRecord is returned when a stored value cannot be decoded into a record
	ErrMalformedRecord = errors.New("malformed credential record")
)

// Key addresses one record inside a session namespace
type Key struct {
	Namespace string
	Kind      Kind
}

// String renders the persisted key, e.g. "production.token"
func (k Key) String() string {
	return k.Namespace + "." + string(k.Kind)
}

// Record is a flat string-keyed credential record
type Record map[string]any

// Store is the secure credential store used by tokens and client credentials
type Store interface {
	// Get returns the record stored under key or ErrNotFound
	Get(ctx context.Context, key Key) (Record, error)

	// Set replaces the record stored under key
	Set(ctx context.Context, key Key, record Record) error

	// Delete removes the record stored under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key Key) error
}

// StorageError reports a failure of the backing store.
// It lets callers tell "the device could not save credentials" apart from network failures.
type StorageError struct {
	Op  string
	Key Key
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("credential store %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, key Key, err error) error {
	return &StorageError{Op: op, Key: key, Err: err}
}

func copyRecord(record Record) Record {
	out := make(Record, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}
