package bbmatch

import (
	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// MDIndex keys a basic block by its (top-down, bottom-up) vertex
// MD-index pair within its function's flow graph (spec.md §4.6.4).
type MDIndex struct{}

func (MDIndex) Name() string { return "bb_mdindex" }

func (m MDIndex) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	primaryFn, secondaryFn *graph.Function, candidatesP, candidatesS []*graph.BasicBlock) (bool, error) {
	key := func(side matchctx.Side, fn *graph.Function) func(*graph.BasicBlock) (interface{}, bool) {
		cache := mc.FlowCache(side, fn.Entry)

		return func(bb *graph.BasicBlock) (interface{}, bool) {
			td, err := cache.VertexMD(fn.Flow, feature.Forward)
			if err != nil {
				return nil, false
			}
			bu, err := cache.VertexMD(fn.Flow, feature.Reverse)
			if err != nil {
				return nil, false
			}

			return [2]float64{td[bb.Entry], bu[bb.Entry]}, true
		}
	}

	return keyedBBMatch(mc, m.Name(), parent.ID, candidatesP, candidatesS,
		key(matchctx.Primary, primaryFn), key(matchctx.Secondary, secondaryFn))
}
