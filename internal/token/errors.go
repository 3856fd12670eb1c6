package token

import (
	"errors"
	"fmt"
)

// ErrTypeMismatch is matched by every decode failure of a server payload or stored record
var ErrTypeMismatch = errors.New("type mismatch")

// DecodeError describes which field of a payload or record failed to decode
type DecodeError struct {
	Source string
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: field %q %s: %v", e.Source, e.Field, e.Reason, ErrTypeMismatch)
}

// Is reports ErrTypeMismatch so callers can branch with errors.Is
func (e *DecodeError) Is(target error) bool {
	return target == ErrTypeMismatch
}

func mismatch(source, field, reason string) error {
	return &DecodeError{Source: source, Field: field, Reason: reason}
}
