package graph

import "sort"

// InstrRange is a half-open [Start, End) range of indices into a
// Function's Instructions slice. The common case is a single
// contiguous range per basic block; multiple ranges arise when two
// overlapping or appended instruction streams are merged into one
// block (spec.md §3 Basic block).
type InstrRange struct {
	Start, End int
}

// BlockID identifies a basic block by the address of its first
// instruction. At most one basic block exists per entry address within
// a FlowGraph.
type BlockID uint64

// BasicBlock is a maximal straight-line instruction sequence, stored as
// one or more instruction ranges against the owning Function's
// Instructions slice.
type BasicBlock struct {
	// Entry is the address of the first instruction of the first range;
	// this is also the block's BlockID.
	Entry BlockID

	// Ranges are the instruction-index ranges making up this block, in
	// increasing address order.
	Ranges []InstrRange
}

// NewBasicBlock builds a BasicBlock whose entry is the address of the
// first instruction in fn.Instructions[ranges[0].Start]. Returns
// ErrEmptyBlock if ranges is empty or out of bounds.
func NewBasicBlock(fn *Function, ranges ...InstrRange) (*BasicBlock, error) {
	if len(ranges) == 0 {
		return nil, ErrEmptyBlock
	}
	for _, r := range ranges {
		if r.Start < 0 || r.End > len(fn.Instructions) || r.Start >= r.End {
			return nil, ErrEmptyBlock
		}
	}
	sorted := append([]InstrRange(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	return &BasicBlock{
		Entry:  BlockID(fn.Instructions[sorted[0].Start].Address),
		Ranges: sorted,
	}, nil
}

// InstructionCount returns the total number of instructions across all
// ranges of bb.
func (bb *BasicBlock) InstructionCount() int {
	n := 0
	for _, r := range bb.Ranges {
		n += r.End - r.Start
	}

	return n
}

// LastAddress returns the address of the last instruction in bb,
// consulting fn.Instructions. This is the "fast path" lookup used by
// FlowGraph.BlockContaining to avoid scanning a candidate block's
// instructions in the common case.
func (bb *BasicBlock) LastAddress(fn *Function) uint64 {
	last := bb.Ranges[len(bb.Ranges)-1]

	return fn.Instructions[last.End-1].Address
}

// Instructions returns bb's instructions in address order by slicing
// fn.Instructions according to bb.Ranges.
func (bb *BasicBlock) Instructions(fn *Function) []Instruction {
	out := make([]Instruction, 0, bb.InstructionCount())
	for _, r := range bb.Ranges {
		out = append(out, fn.Instructions[r.Start:r.End]...)
	}

	return out
}

// Contains reports whether addr falls within one of bb's instruction
// ranges (inclusive of each instruction's own byte span).
func (bb *BasicBlock) Contains(fn *Function, addr uint64) bool {
	for _, r := range bb.Ranges {
		if r.Start >= len(fn.Instructions) || r.End > len(fn.Instructions) {
			continue
		}
		lo := fn.Instructions[r.Start].Address
		hi := bb.lastInRange(fn, r)
		if addr >= lo && addr <= hi {
			return true
		}
	}

	return false
}

func (bb *BasicBlock) lastInRange(fn *Function, r InstrRange) uint64 {
	last := fn.Instructions[r.End-1]

	return last.Address + last.Size() - 1
}

// EdgeType enumerates control-flow edge kinds.
type EdgeType uint8

const (
	EdgeUnconditional EdgeType = iota
	EdgeTrue
	EdgeFalse
	EdgeSwitch
)

// Edge is a directed control-flow (or call-graph) edge between two
// BlockIDs (or, in CallGraph, two function addresses reinterpreted as
// BlockID-shaped uint64s). Sort order is (Source, Target, Type),
// matching spec.md §3's Flow-graph edge invariant.
type Edge struct {
	Source, Target BlockID
	Type           EdgeType
	IsBackEdge     bool
}

// Less reports whether e sorts before o by (Source, Target, Type).
func (e Edge) Less(o Edge) bool {
	if e.Source != o.Source {
		return e.Source < o.Source
	}
	if e.Target != o.Target {
		return e.Target < o.Target
	}

	return e.Type < o.Type
}
