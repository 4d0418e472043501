package driver

import "github.com/flowmatch/bindiff/fixedpoint"

// Result is the fixed-point catalog a Run produces (spec.md §6's
// "Output... fixed-point catalog; serialization format out of scope").
type Result struct {
	// FixedPoints holds every function fixed point in the store at the
	// end of the run, sorted by primary address (fixedpoint.Store.All's
	// ordering), confidence freshly recomputed.
	FixedPoints []*fixedpoint.Function

	// Cancelled reports whether the run stopped early because the
	// caller's cancellation signal fired. FixedPoints still holds
	// whatever was accumulated before that point (spec.md §5/§7).
	Cancelled bool
}
