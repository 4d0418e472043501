package exchange

import "errors"

// Sentinel errors for malformed exchange documents, per spec.md §7's
// InvalidInput error kind.
var (
	// ErrInvalidInput wraps every decode-time invariant violation this
	// package detects (dangling block reference, unknown function
	// address, out-of-range table index, and so on).
	ErrInvalidInput = errors.New("exchange: invalid input")

	// ErrNoFunctions is returned by Load for a document with an empty
	// function table; Load returns no call graph in that case (Save can
	// still write such a document).
	ErrNoFunctions = errors.New("exchange: document has no functions")
)
