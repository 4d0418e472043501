package graph

import "errors"

// Sentinel errors for graph model construction and lookups.
var (
	// ErrNilArena indicates a nil *Arena was supplied to a constructor.
	ErrNilArena = errors.New("graph: arena is nil")

	// ErrDuplicateBlock indicates two basic blocks were registered at the
	// same entry address.
	ErrDuplicateBlock = errors.New("graph: duplicate basic block entry address")

	// ErrEmptyBlock indicates a basic block was constructed with zero
	// instruction ranges.
	ErrEmptyBlock = errors.New("graph: basic block has no instruction ranges")

	// ErrNoEntryBlock indicates a FlowGraph was built without a block at
	// its declared entry address.
	ErrNoEntryBlock = errors.New("graph: flow graph entry address has no basic block")

	// ErrUnknownFunction indicates an edge or call site referenced a
	// function address absent from the call graph.
	ErrUnknownFunction = errors.New("graph: unknown function address")
)
