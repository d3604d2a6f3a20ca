package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/aethel/internal/persistence"
)

// Stable error kinds surfaced by engine operations. Callers match with
// errors.Is; the HTTP layer maps them to status codes.
var (
	ErrNotFound              = errors.New("not found")
	ErrDuplicateUsername     = errors.New("username already taken")
	ErrConflict              = errors.New("conflict")
	ErrInvalidInput          = errors.New("invalid input")
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidOperation      = errors.New("invalid operation")
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInsufficientSkill     = errors.New("insufficient skill")
)

// Kind returns the engine sentinel matching err, or nil for unexpected
// errors (which the API layer reports as internal).
func Kind(err error) error {
	for _, kind := range []error{
		ErrNotFound, ErrDuplicateUsername, ErrConflict, ErrInvalidInput,
		ErrForbidden, ErrInvalidOperation, ErrInsufficientResources,
		ErrInsufficientInventory, ErrInsufficientSkill,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// notFound rewraps a storage lookup miss as the engine's NotFound kind,
// passing other errors through.
func notFound(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
