package bbmatch

import (
	"sort"

	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// SelfLoopNodes restricts candidates to blocks with a self edge and
// matches the remaining ones by relative address order (spec.md
// §4.6.11), the same ordinal tie-break funcmatch.AddressSequence
// applies at function granularity.
type SelfLoopNodes struct{}

func (SelfLoopNodes) Name() string { return "self_loop_nodes" }

func (m SelfLoopNodes) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	primaryFn, secondaryFn *graph.Function, candidatesP, candidatesS []*graph.BasicBlock) (bool, error) {
	selfLoops := func(fn *graph.Function, candidates []*graph.BasicBlock) []*graph.BasicBlock {
		inSet := map[graph.BlockID]bool{}
		for _, bb := range candidates {
			inSet[bb.Entry] = true
		}
		var out []*graph.BasicBlock
		for _, e := range fn.Flow.Edges() {
			if e.Source == e.Target && inSet[e.Source] {
				out = append(out, findBlock(candidates, e.Source))
			}
		}

		return out
	}

	loopsP := selfLoops(primaryFn, candidatesP)
	loopsS := selfLoops(secondaryFn, candidatesS)
	if len(loopsP) == 0 || len(loopsP) != len(loopsS) {
		return false, nil
	}

	sort.Slice(loopsP, func(i, j int) bool { return loopsP[i].Entry < loopsP[j].Entry })
	sort.Slice(loopsS, func(i, j int) bool { return loopsS[i].Entry < loopsS[j].Entry })

	matched := false
	for i := range loopsP {
		_, inserted, err := mc.Store.AddBasicBlock(parent.ID, loopsP[i].Entry, loopsS[i].Entry, m.Name())
		if err != nil {
			return matched, err
		}
		if inserted {
			matched = true
		}
	}

	return matched, nil
}

func findBlock(candidates []*graph.BasicBlock, id graph.BlockID) *graph.BasicBlock {
	for _, bb := range candidates {
		if bb.Entry == id {
			return bb
		}
	}

	return nil
}
