package types

import (
	"errors"
	"fmt"
)

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Record operation errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrConflict      = errors.New("record version conflict")
	ErrInvalidID     = errors.New("invalid user ID")
	ErrInvalidData   = errors.New("invalid record data")
)

// Domain errors. ErrUnknownMilestone, ErrUnknownActivityType, and
// ErrInvalidProfile all wrap ErrInvalidInput so callers can match the
// whole class with errors.Is(err, ErrInvalidInput).
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidState        = errors.New("invalid lifecycle state")
	ErrInvalidTransition   = errors.New("invalid lifecycle transition")
	ErrUnknownMilestone    = joinInvalid("unknown milestone ID")
	ErrUnknownActivityType = joinInvalid("unknown activity type")
	ErrInvalidProfile      = joinInvalid("malformed onboarding profile")
)

// joinInvalid builds a sentinel that also matches ErrInvalidInput.
func joinInvalid(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInvalidInput)
}
