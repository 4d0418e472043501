package funcmatch

import (
	"sort"

	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// StepNameCallReference is the fixed-point step name recorded by call
// sequence propagation, carried through literally from
// original_source/call_graph_match_function_call_sequence.cc per
// SPEC_FULL.md §11 — distinct from the registry name "call_sequence"
// used to select/order this strategy in a pipeline.
const StepNameCallReference = "function_call_reference_match"

// CallSequence propagates matches from an already-matched caller
// (parent) to its unmatched callees, by call order, when both sides
// have the same number of unmatched call candidates — the "sequence"
// member of spec.md §4.5.9's exact/topology/sequence family. It is the
// only strategy this package runs with parent != nil; it declines
// (false, nil) when invoked function-wide (parent == nil).
type CallSequence struct{}

func (CallSequence) Name() string { return "call_sequence" }

func (CallSequence) StrictEquivalence() bool { return false }

func (m CallSequence) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	candidatesP, candidatesS []*graph.Function) (bool, error) {
	if parent == nil {
		return false, nil
	}

	orderedP := calleesInOrder(mc.Primary, parent.PrimaryAddr, candidatesP)
	orderedS := calleesInOrder(mc.Secondary, parent.SecondaryAddr, candidatesS)
	if len(orderedP) == 0 || len(orderedP) != len(orderedS) {
		return false, nil
	}

	matched := false
	for i := range orderedP {
		_, inserted, err := mc.Store.Add(orderedP[i], orderedS[i], StepNameCallReference)
		if err != nil {
			return matched, err
		}
		if inserted {
			matched = true
		}
	}

	return matched, nil
}

// calleesInOrder returns the subset of candidates called by caller, in
// ascending call-site order (call sites, not candidate addresses, is
// the sequence this strategy keys on).
func calleesInOrder(cg *graph.CallGraph, caller uint64, candidates []*graph.Function) []*graph.Function {
	byAddr := make(map[uint64]*graph.Function, len(candidates))
	for _, fn := range candidates {
		byAddr[fn.Entry] = fn
	}

	var sites []graph.CallEdge
	for _, e := range cg.CallEdges() {
		if e.From == caller {
			if _, ok := byAddr[e.To]; ok {
				sites = append(sites, e)
			}
		}
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].Site < sites[j].Site })

	out := make([]*graph.Function, len(sites))
	for i, e := range sites {
		out[i] = byAddr[e.To]
	}

	return out
}
