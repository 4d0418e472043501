package bbmatch

import (
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// CallRefs keys a basic block by the weighted sum of its call
// instructions' already-matched targets: Σᵢ i·(primaryAddr +
// matchedSecondaryAddr), i counting only calls whose target function is
// already a fixed point (spec.md §4.6.7). A block with no matched call
// targets contributes no key.
type CallRefs struct{}

func (CallRefs) Name() string { return "call_refs" }

func (m CallRefs) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	primaryFn, secondaryFn *graph.Function, candidatesP, candidatesS []*graph.BasicBlock) (bool, error) {
	keyP := func(bb *graph.BasicBlock) (interface{}, bool) {
		return callRefKey(mc, primaryFn, bb, true)
	}
	keyS := func(bb *graph.BasicBlock) (interface{}, bool) {
		return callRefKey(mc, secondaryFn, bb, false)
	}

	return keyedBBMatch(mc, m.Name(), parent.ID, candidatesP, candidatesS, keyP, keyS)
}

func callRefKey(mc *matchctx.Context, fn *graph.Function, bb *graph.BasicBlock, primarySide bool) (interface{}, bool) {
	var sum uint64
	i := 1
	found := false
	for _, in := range bb.Instructions(fn) {
		for _, target := range in.CallTargets {
			if primarySide {
				fp, ok := mc.Store.ByPrimary(target)
				if !ok {
					continue
				}
				sum += uint64(i) * (target + fp.SecondaryAddr)
			} else {
				fp, ok := mc.Store.BySecondary(target)
				if !ok {
					continue
				}
				sum += uint64(i) * (fp.PrimaryAddr + target)
			}
			i++
			found = true
		}
	}

	return sum, found
}
