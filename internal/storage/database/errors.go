package database

import "errors"

var (
	// ErrDBClosed is returned by a DB whose backend handle was closed.
	ErrDBClosed = errors.New("state database closed")

	// ErrKeyNotFound reports a missing key. The state store maps it to an
	// absent ledger entry.
	ErrKeyNotFound = errors.New("key not found")

	// ErrDBNotOpen is returned by CloseDB for a name the manager never opened.
	ErrDBNotOpen = errors.New("state database not open")

	// ErrBatchOperationFailed wraps the failing op of a Batch; nothing in
	// the batch was applied.
	ErrBatchOperationFailed = errors.New("batch operation failed")

	// ErrUnknownBackend is returned for a [database] backend name that no
	// adapter serves.
	ErrUnknownBackend = errors.New("unknown database backend")
)
