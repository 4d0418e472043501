package bbmatch

import (
	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// LoopEntryNodes restricts matching to blocks that are the target of at
// least one back edge, keyed by (back-edge in-degree, forward vertex
// MD) so that loop headers with distinctive bodies still match
// uniquely (spec.md §4.6.10).
type LoopEntryNodes struct{}

func (LoopEntryNodes) Name() string { return "loop_entry_nodes" }

func (m LoopEntryNodes) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	primaryFn, secondaryFn *graph.Function, candidatesP, candidatesS []*graph.BasicBlock) (bool, error) {
	key := func(side matchctx.Side, fn *graph.Function) func(*graph.BasicBlock) (interface{}, bool) {
		cache := mc.FlowCache(side, fn.Entry)

		return func(bb *graph.BasicBlock) (interface{}, bool) {
			back, err := cache.BackEdges(fn.Flow)
			if err != nil {
				return nil, false
			}
			indeg := 0
			for _, e := range back {
				if e.Target == bb.Entry {
					indeg++
				}
			}
			if indeg == 0 {
				return nil, false
			}
			md, err := cache.VertexMD(fn.Flow, feature.Forward)
			if err != nil {
				return nil, false
			}

			return [2]float64{float64(indeg), md[bb.Entry]}, true
		}
	}

	return keyedBBMatch(mc, m.Name(), parent.ID, candidatesP, candidatesS,
		key(matchctx.Primary, primaryFn), key(matchctx.Secondary, secondaryFn))
}
