package funcmatch

import (
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// LoopCount keys a function by its back-edge count, considering only
// functions with at least one loop — spec.md §4.5.8's "used only when
// ≥ 1 loop exists" (an acyclic function's loop count of zero is far too
// common to carry any signal).
type LoopCount struct{}

func (LoopCount) Name() string { return "loop_count" }

func (LoopCount) StrictEquivalence() bool { return false }

func (m LoopCount) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	candidatesP, candidatesS []*graph.Function) (bool, error) {
	key := func(side matchctx.Side) func(*graph.Function) (interface{}, bool) {
		return func(fn *graph.Function) (interface{}, bool) {
			if fn.Flow == nil {
				return nil, false
			}
			cache := mc.FlowCache(side, fn.Entry)
			back, err := cache.BackEdges(fn.Flow)
			if err != nil || len(back) == 0 {
				return nil, false
			}

			return len(back), true
		}
	}

	return keyedMatch(mc, m.Name(), candidatesP, candidatesS, key(matchctx.Primary), key(matchctx.Secondary))
}
