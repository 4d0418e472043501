package fixedpoint

import "github.com/google/uuid"

// ID identifies a function-level fixed point independent of address,
// stable across a Delete/re-Add cycle.
type ID = uuid.UUID

// Function is a matched (primary, secondary) function pair: the
// matching-step name that produced it, a recomputable confidence, its
// contained basic-block fixed points, a similarity score, and a
// manual/auto flag (spec.md §3 Fixed point).
type Function struct {
	ID ID

	PrimaryAddr   uint64
	SecondaryAddr uint64
	StepName      string
	Confidence    float64
	Similarity    float64
	Manual        bool

	BasicBlocks []*BasicBlock
}

// BasicBlock is a matched (primary, secondary) basic-block pair
// belonging to exactly one enclosing Function fixed point.
type BasicBlock struct {
	ParentID ID

	PrimaryBlock   uint64
	SecondaryBlock uint64
	StepName       string
	Confidence     float64
}
