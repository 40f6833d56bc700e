package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned by every operation before Init succeeded.
	ErrNotReady = errors.New("place store is not initialized")
	ErrNotFound = errors.New("place not found")
)

// StorageError reports a failed storage operation. Init failures are fatal to
// the caller; Insert failures are surfaced and not retried.
type StorageError struct {
	Op  string
	ID  string
	Err error
}

func (e *StorageError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("place store %s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("place store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
