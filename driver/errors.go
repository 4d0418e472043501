package driver

import "errors"

var (
	// ErrConfig mirrors config.ErrConfig: initialization fails when no
	// matching steps are configured (spec.md §6/§7).
	ErrConfig = errors.New("driver: no matching steps configured")

	// ErrCancelled names a run stopped by the caller's cancellation
	// signal. Run itself does not return it: a cancelled Run returns the
	// fixed points accumulated so far with Result.Cancelled set and a nil
	// error.
	ErrCancelled = errors.New("driver: run cancelled")

	// ErrInternal indicates an invariant the loader is responsible for
	// was violated (e.g. a fixed point referencing an address absent
	// from its call graph) — this is a loader bug, not user input, and
	// is never returned for an ordinary "no match found" outcome.
	ErrInternal = errors.New("driver: internal invariant violation")
)
