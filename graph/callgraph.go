package graph

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/flowmatch/bindiff/internal/lowgraph"
)

// Library records static/dynamic linkage metadata for a function.
type Library struct {
	Name     string
	IsStatic bool
}

// Module records the originating module (executable or shared object)
// for a function.
type Module struct {
	Name string
}

// CallEdge is a call-site edge in the call graph: From calls To at
// instruction address Site. Circular marks a self-edge (From == To);
// Duplicate marks that another edge with the same (From, To) already
// exists — both flags are computed once at AddCallEdge time by grouping
// on (From, To), per original_source/call_graph.cc (see SPEC_FULL.md §11).
type CallEdge struct {
	From, To uint64
	Site     uint64
	Circular bool
	Duplicate bool
}

// CallGraph is a directed multigraph over functions (vertices) with
// call-site edges, backed by the same internal/lowgraph engine as
// FlowGraph. Vertex order is by entry-point address.
type CallGraph struct {
	lg        *lowgraph.Graph
	functions map[uint64]*Function
	order     []uint64

	edges     []CallEdge
	edgeGroup map[[2]uint64]int // (from,to) -> count, used to flag duplicates

	libraries []Library
	modules   []Module

	arena *Arena
}

// NewCallGraph returns an empty call graph.
func NewCallGraph() *CallGraph {
	return &CallGraph{
		lg:        lowgraph.NewGraph(lowgraph.WithDirected(true), lowgraph.WithMultiEdges(), lowgraph.WithLoops()),
		functions: make(map[uint64]*Function),
		edgeGroup: make(map[[2]uint64]int),
	}
}

// AddFunction registers fn as a vertex, keyed by its entry address.
func (cg *CallGraph) AddFunction(fn *Function) error {
	if _, dup := cg.functions[fn.Entry]; dup {
		return fmt.Errorf("graph: function %x: %w", fn.Entry, ErrDuplicateBlock)
	}
	cg.functions[fn.Entry] = fn
	cg.order = append(cg.order, fn.Entry)
	sort.Slice(cg.order, func(i, j int) bool { return cg.order[i] < cg.order[j] })

	return cg.lg.AddVertex(funcVertexID(fn.Entry))
}

func funcVertexID(addr uint64) string { return strconv.FormatUint(addr, 16) }

// AddCallEdge records a call-site edge from caller to callee at site.
// Self-edges and parallel edges are permitted (spec.md §3 Call graph)
// and are flagged Circular/Duplicate here rather than rejected.
func (cg *CallGraph) AddCallEdge(caller, callee, site uint64) error {
	if _, ok := cg.functions[caller]; !ok {
		return fmt.Errorf("graph: caller %x: %w", caller, ErrUnknownFunction)
	}
	if _, ok := cg.functions[callee]; !ok {
		return fmt.Errorf("graph: callee %x: %w", callee, ErrUnknownFunction)
	}
	key := [2]uint64{caller, callee}
	n := cg.edgeGroup[key]
	cg.edgeGroup[key] = n + 1

	ce := CallEdge{From: caller, To: callee, Site: site, Circular: caller == callee, Duplicate: n > 0}
	cg.edges = append(cg.edges, ce)

	eid := fmt.Sprintf("%x_%x_%d", caller, callee, n)
	_, err := cg.lg.AddEdge(funcVertexID(caller), funcVertexID(callee), 0,
		lowgraph.WithEdgeDirected(true), lowgraph.WithID(eid))

	return err
}

// FunctionByAddress returns the function at addr.
func (cg *CallGraph) FunctionByAddress(addr uint64) (*Function, bool) {
	fn, ok := cg.functions[addr]

	return fn, ok
}

// Functions returns all functions sorted by entry address.
func (cg *CallGraph) Functions() []*Function {
	out := make([]*Function, len(cg.order))
	for i, addr := range cg.order {
		out[i] = cg.functions[addr]
	}

	return out
}

// CallEdges returns all call-site edges sorted by (From, To, Site).
func (cg *CallGraph) CallEdges() []CallEdge {
	out := append([]CallEdge(nil), cg.edges...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}

		return out[i].Site < out[j].Site
	})

	return out
}

// Callees returns the addresses caller calls, sorted ascending
// (duplicates collapsed — callers that need call multiplicity should
// use CallEdges directly).
func (cg *CallGraph) Callees(caller uint64) []uint64 {
	ids, _ := cg.lg.NeighborIDs(funcVertexID(caller))
	out := make([]uint64, 0, len(ids))
	for _, s := range ids {
		if v, err := strconv.ParseUint(s, 16, 64); err == nil {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Callers returns the addresses that call callee.
func (cg *CallGraph) Callers(callee uint64) []uint64 {
	var out []uint64
	for _, e := range cg.edges {
		if e.To == callee {
			out = append(out, e.From)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// SetLibraries / SetModules attach the library and module metadata
// tables decoded from the exchange format.
func (cg *CallGraph) SetLibraries(libs []Library) { cg.libraries = libs }
func (cg *CallGraph) SetModules(mods []Module)    { cg.modules = mods }

// Library returns the library record at idx, or false if idx is -1 or
// out of range.
func (cg *CallGraph) Library(idx int) (Library, bool) {
	if idx < 0 || idx >= len(cg.libraries) {
		return Library{}, false
	}

	return cg.libraries[idx], true
}

// Libraries returns the full library table, in the order SetLibraries
// received it (library index assignment is caller-controlled, so there
// is no canonical sort to re-derive here).
func (cg *CallGraph) Libraries() []Library { return append([]Library(nil), cg.libraries...) }

// Modules returns the full module table, in SetModules order.
func (cg *CallGraph) Modules() []Module { return append([]Module(nil), cg.modules...) }

// SetArena attaches the arena that interned every mnemonic, expression
// and operand referenced by this call graph's functions. Optional: a
// call graph built without one simply reports no string references.
func (cg *CallGraph) SetArena(a *Arena) { cg.arena = a }

// Arena returns the call graph's interning arena, or nil if none was
// attached.
func (cg *CallGraph) Arena() *Arena { return cg.arena }
