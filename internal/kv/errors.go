package kv

import "errors"

// Sentinel errors for key-value operations.
var (
	ErrKeyNotFound = errors.New("kv: key not found")
)

// Op constants name the failed operation for error context.
const (
	OpGet  = "GET"
	OpSet  = "SET"
	OpPing = "PING"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
