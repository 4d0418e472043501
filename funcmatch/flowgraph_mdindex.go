package funcmatch

import (
	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// FlowGraphMDIndex keys a function by the (top-down, bottom-up)
// vertex MD-index pair of its own flow graph's entry block (spec.md
// §4.5.5's "per-function MD").
type FlowGraphMDIndex struct{}

func (FlowGraphMDIndex) Name() string { return "flowgraph_mdindex" }

func (FlowGraphMDIndex) StrictEquivalence() bool { return false }

func (m FlowGraphMDIndex) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	candidatesP, candidatesS []*graph.Function) (bool, error) {
	key := func(side matchctx.Side) func(*graph.Function) (interface{}, bool) {
		return func(fn *graph.Function) (interface{}, bool) {
			if fn.Flow == nil {
				return nil, false
			}
			cache := mc.FlowCache(side, fn.Entry)
			td, err := cache.VertexMD(fn.Flow, feature.Forward)
			if err != nil {
				return nil, false
			}
			bu, err := cache.VertexMD(fn.Flow, feature.Reverse)
			if err != nil {
				return nil, false
			}

			return [2]float64{td[fn.Flow.Entry()], bu[fn.Flow.Entry()]}, true
		}
	}

	return keyedMatch(mc, m.Name(), candidatesP, candidatesS, key(matchctx.Primary), key(matchctx.Secondary))
}
