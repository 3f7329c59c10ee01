package store

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrBadConnectionString = errors.New("malformed connection string")
	ErrNotConnected        = errors.New("store is not connected")
	ErrQueryFailed         = errors.New("query failed")
	ErrMutationFailed      = errors.New("mutation failed")
)

// StoreError provides structured error information for store operations.
type StoreError struct {
	Op     string // Operation that failed, e.g. "fetch", "persist"
	Detail string // Additional context
	Cause  error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("store %s (%s): %v", e.Op, e.Detail, e.Cause)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

func opError(op, detail string, cause error) error {
	return &StoreError{Op: op, Detail: detail, Cause: cause}
}
