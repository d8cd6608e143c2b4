package partner

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-partners/internal/config"
)

var (
	// ErrNotFound matches every *NotFoundError through errors.Is.
	ErrNotFound = errors.New(config.ErrPartnerNotFound)

	// ErrPairingMismatch is returned when a remote identifier does not name the partner.
	ErrPairingMismatch = errors.New(config.ErrPairingMismatch)
)

// NotFoundError reports an operation on an id that is not in the collection.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", config.ErrPartnerNotFound, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PersistenceError reports a backing store failure. The in-memory change that
// triggered it has already been applied and is kept.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s (%s): %v", config.ErrPersist, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// DecodeError reports a persisted blob that could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", config.ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
