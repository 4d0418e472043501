package graph

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/flowmatch/bindiff/internal/lowgraph"
)

// FlowGraph is one function's control-flow graph: basic blocks as
// vertices, control-flow transitions as edges. It is backed by an
// internal/lowgraph.Graph keyed by hex-encoded block entry addresses,
// the same storage engine the call graph uses, so both graphs share one
// locking/cloning/adjacency implementation.
type FlowGraph struct {
	fn    *Function
	entry BlockID
	lg    *lowgraph.Graph

	blocks map[BlockID]*BasicBlock
	order  []BlockID // sorted ascending, built once at construction
}

// NewFlowGraph builds a FlowGraph for fn from the given basic blocks and
// edges. It returns ErrNoEntryBlock if no block's entry equals entry,
// and ErrDuplicateBlock if two blocks share an entry address.
func NewFlowGraph(fn *Function, entry BlockID, blocks []*BasicBlock, edges []Edge) (*FlowGraph, error) {
	lg := lowgraph.NewGraph(lowgraph.WithDirected(true), lowgraph.WithMultiEdges(), lowgraph.WithLoops())

	fg := &FlowGraph{
		fn:     fn,
		entry:  entry,
		lg:     lg,
		blocks: make(map[BlockID]*BasicBlock, len(blocks)),
	}

	foundEntry := false
	for _, bb := range blocks {
		if _, dup := fg.blocks[bb.Entry]; dup {
			return nil, fmt.Errorf("graph: block %x: %w", uint64(bb.Entry), ErrDuplicateBlock)
		}
		fg.blocks[bb.Entry] = bb
		if err := lg.AddVertex(blockVertexID(bb.Entry)); err != nil {
			return nil, fmt.Errorf("graph: AddVertex: %w", err)
		}
		if bb.Entry == entry {
			foundEntry = true
		}
	}
	if !foundEntry {
		return nil, ErrNoEntryBlock
	}

	for _, e := range edges {
		// Edges whose endpoints have no backing block are silently
		// dropped, per spec.md §3's Function invariant on dangling edges.
		if _, ok := fg.blocks[e.Source]; !ok {
			continue
		}
		if _, ok := fg.blocks[e.Target]; !ok {
			continue
		}
		if _, err := lg.AddEdge(blockVertexID(e.Source), blockVertexID(e.Target), 0,
			lowgraph.WithEdgeDirected(true)); err != nil {
			// AddEdge fails only on a real invariant violation (bad
			// weight, disallowed loop); the graph is already
			// configured to allow both, so this indicates a loader bug.
			return nil, fmt.Errorf("graph: AddEdge(%x,%x): %w", uint64(e.Source), uint64(e.Target), err)
		}
		// Stash the typed attributes the generic engine can't model.
		fg.setEdgeMeta(e)
	}

	fg.order = make([]BlockID, 0, len(fg.blocks))
	for id := range fg.blocks {
		fg.order = append(fg.order, id)
	}
	sort.Slice(fg.order, func(i, j int) bool { return fg.order[i] < fg.order[j] })

	return fg, nil
}

func blockVertexID(id BlockID) string { return strconv.FormatUint(uint64(id), 16) }

func (fg *FlowGraph) setEdgeMeta(e Edge) {
	for _, le := range fg.lg.Edges() {
		if le.From == blockVertexID(e.Source) && le.To == blockVertexID(e.Target) && le.Metadata == nil {
			le.Metadata = map[string]interface{}{"type": e.Type, "back": e.IsBackEdge}

			return
		}
	}
}

// Function returns the owning function.
func (fg *FlowGraph) Function() *Function { return fg.fn }

// Entry returns the flow graph's designated entry block id.
func (fg *FlowGraph) Entry() BlockID { return fg.entry }

// BlockByAddress returns the basic block whose entry equals addr.
func (fg *FlowGraph) BlockByAddress(addr uint64) (*BasicBlock, bool) {
	bb, ok := fg.blocks[BlockID(addr)]

	return bb, ok
}

// Blocks returns all basic blocks sorted by entry address ascending.
func (fg *FlowGraph) Blocks() []*BasicBlock {
	out := make([]*BasicBlock, len(fg.order))
	for i, id := range fg.order {
		out[i] = fg.blocks[id]
	}

	return out
}

// BlockContaining returns the basic block whose instruction range
// contains addr, probing outward from the sorted-order lower bound and
// testing each candidate's LastAddress fast path before scanning its
// instructions, per spec.md §4.1.
func (fg *FlowGraph) BlockContaining(addr uint64) (*BasicBlock, bool) {
	i := sort.Search(len(fg.order), func(i int) bool { return uint64(fg.order[i]) > addr })
	// i is the first block whose entry exceeds addr; the containing
	// block, if any, is among i-1, i-2, ... (addresses can overlap, so
	// more than one candidate may need checking).
	for j := i - 1; j >= 0; j-- {
		bb := fg.blocks[fg.order[j]]
		if bb.LastAddress(fg.fn) < addr {
			// Fast path: addr lies strictly past this block's last
			// instruction and, since order is ascending and entries
			// are unique, no earlier block can reach further — unless
			// overlapping ranges are in play, so fall through to a
			// direct scan before giving up entirely.
			if bb.Contains(fg.fn, addr) {
				return bb, true
			}
			continue
		}
		if bb.Contains(fg.fn, addr) {
			return bb, true
		}
	}

	return nil, false
}

// Edges returns all flow edges sorted by (source, target, type).
func (fg *FlowGraph) Edges() []Edge {
	raw := fg.lg.Edges()
	out := make([]Edge, 0, len(raw))
	for _, e := range raw {
		src, _ := strconv.ParseUint(e.From, 16, 64)
		dst, _ := strconv.ParseUint(e.To, 16, 64)
		et := EdgeUnconditional
		back := false
		if e.Metadata != nil {
			if t, ok := e.Metadata["type"].(EdgeType); ok {
				et = t
			}
			if b, ok := e.Metadata["back"].(bool); ok {
				back = b
			}
		}
		out = append(out, Edge{Source: BlockID(src), Target: BlockID(dst), Type: et, IsBackEdge: back})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })

	return out
}

// Successors returns the BlockIDs addr's block has outgoing edges to,
// sorted ascending.
func (fg *FlowGraph) Successors(id BlockID) []BlockID {
	ids, _ := fg.lg.NeighborIDs(blockVertexID(id))
	out := make([]BlockID, 0, len(ids))
	for _, s := range ids {
		if v, err := strconv.ParseUint(s, 16, 64); err == nil {
			out = append(out, BlockID(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Predecessors returns the BlockIDs with an outgoing edge to id.
func (fg *FlowGraph) Predecessors(id BlockID) []BlockID {
	var out []BlockID
	for _, e := range fg.Edges() {
		if e.Target == id {
			out = append(out, e.Source)
		}
	}

	return out
}
