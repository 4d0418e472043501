package bbmatch

import (
	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// MDIndexRelaxed keys a basic block by its BFS-level (not
// back-edge-free) MD-index pair, a fallback when the two functions'
// loop structure differs (spec.md §4.6.9).
type MDIndexRelaxed struct{}

func (MDIndexRelaxed) Name() string { return "bb_mdindex_relaxed" }

func (m MDIndexRelaxed) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	primaryFn, secondaryFn *graph.Function, candidatesP, candidatesS []*graph.BasicBlock) (bool, error) {
	key := func(side matchctx.Side, fn *graph.Function) func(*graph.BasicBlock) (interface{}, bool) {
		cache := mc.FlowCache(side, fn.Entry)

		return func(bb *graph.BasicBlock) (interface{}, bool) {
			td := cache.VertexMDRelaxed(fn.Flow, feature.Forward)
			bu := cache.VertexMDRelaxed(fn.Flow, feature.Reverse)

			return [2]float64{td[bb.Entry], bu[bb.Entry]}, true
		}
	}

	return keyedBBMatch(mc, m.Name(), parent.ID, candidatesP, candidatesS,
		key(matchctx.Primary, primaryFn), key(matchctx.Secondary, secondaryFn))
}
