package database

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
)

var (
	// ErrDuplicate marks a uniqueness constraint firing unexpectedly. Fatal
	// for the single record only; the caller skips it and continues the batch.
	ErrDuplicate = errors.New("duplicate key")

	// ErrUnavailable marks a storage-level failure. No store means no possible
	// progress, so the caller aborts the remaining cycle.
	ErrUnavailable = errors.New("storage unavailable")
)

const sqliteConstraint = 19 // SQLITE_CONSTRAINT primary result code

func isConstraintErr(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqliteConstraint
	}
	return false
}

// classify maps a driver error onto the repository error taxonomy, keeping
// the driver detail in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isConstraintErr(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
