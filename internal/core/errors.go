package core

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth covers absent, malformed and rejected handshake credentials.
	ErrAuth = errors.New("authentication failed")
	// ErrValidation rejects client input before it reaches the store.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence wraps store write failures; surfaced to the sender only.
	ErrPersistence = errors.New("persistence failed")

	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

func AuthError(err error) error {
	return fmt.Errorf("%w: %w", ErrAuth, err)
}

func ValidationError(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

func PersistenceError(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
