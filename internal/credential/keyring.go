package credential

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the keyring service name records are filed under
const DefaultKeyringService = "netstack"

// KeyringStore keeps records in the operating system keyring.
// Each record is serialized as a JSON object under the account name Key.String().
//
// Record values are never logged; only keys are written to the audit log.
type KeyringStore struct {
	service string
	logger  zerolog.Logger
}

// NewKeyringStore creates a store that files records under the given keyring service
func NewKeyringStore(service string, logger zerolog.Logger) *KeyringStore {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringStore{
		service: service,
		logger:  logger.With().Str("component", "keyring").Logger(),
	}
}

// Get reads and decodes the record stored under key
func (s *KeyringStore) Get(_ context.Context, key Key) (Record, error) {
	raw, err := keyring.Get(s.service, key.String())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("get", key, errors.Wrap(err, "keyring read failed"))
	}

	var record Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil || record == nil {
		return nil, storageError("get", key, errors.WithMessage(ErrMalformedRecord, "keyring value is not a JSON object"))
	}
	return record, nil
}

// Set encodes and writes the record under key
func (s *KeyringStore) Set(_ context.Context, key Key, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return storageError("set", key, errors.Wrap(err, "encode record"))
	}

	if err := keyring.Set(s.service, key.String(), string(data)); err != nil {
		s.logger.Warn().Str("event", "credential_store_failed").Stringer("key", key).Err(err).Msg("keyring write failed")
		return storageError("set", key, errors.Wrap(err, "keyring write failed"))
	}

	s.logger.Debug().Str("event", "credential_stored").Stringer("key", key).Msg("credential stored")
	return nil
}

// Delete removes the record under key, ignoring missing entries
func (s *KeyringStore) Delete(_ context.Context, key Key) error {
	if err := keyring.Delete(s.service, key.String()); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		s.logger.Warn().Str("event", "credential_delete_failed").Stringer("key", key).Err(err).Msg("keyring delete failed")
		return storageError("delete", key, errors.Wrap(err, "keyring delete failed"))
	}

	s.logger.Debug().Str("event", "credential_deleted").Stringer("key", key).Msg("credential deleted")
	return nil
}
