package funcmatch

import (
	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// InstructionCount keys a function by its total instruction count.
// Strict: spec.md §4.5.13 additionally requires both sides to agree on
// the flow-graph MD-index key, so a candidate pair sharing an
// instruction count but disagreeing in flow-graph structure is
// rejected even if the count is otherwise unique on both sides.
type InstructionCount struct{}

func (InstructionCount) Name() string { return "instruction_count" }

func (InstructionCount) StrictEquivalence() bool { return true }

func (m InstructionCount) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	candidatesP, candidatesS []*graph.Function) (bool, error) {
	key := func(side matchctx.Side) func(*graph.Function) (interface{}, bool) {
		return func(fn *graph.Function) (interface{}, bool) {
			if fn.Flow == nil {
				return nil, false
			}

			return mc.FlowCache(side, fn.Entry).InstructionCount(fn.Flow), true
		}
	}

	mdKey := func(side matchctx.Side) func(*graph.Function) (interface{}, bool) {
		return func(fn *graph.Function) (interface{}, bool) {
			cache := mc.FlowCache(side, fn.Entry)
			md, err := cache.VertexMD(fn.Flow, feature.Forward)
			if err != nil {
				return nil, false
			}

			return sumFloatMap(md), true
		}
	}

	countKeyP, countKeyS := key(matchctx.Primary), key(matchctx.Secondary)
	mdKeyP, mdKeyS := mdKey(matchctx.Primary), mdKey(matchctx.Secondary)

	strictKeyP := func(fn *graph.Function) (interface{}, bool) {
		c, ok := countKeyP(fn)
		if !ok {
			return nil, false
		}
		md, ok := mdKeyP(fn)
		if !ok {
			return nil, false
		}

		return [2]interface{}{c, md}, true
	}
	strictKeyS := func(fn *graph.Function) (interface{}, bool) {
		c, ok := countKeyS(fn)
		if !ok {
			return nil, false
		}
		md, ok := mdKeyS(fn)
		if !ok {
			return nil, false
		}

		return [2]interface{}{c, md}, true
	}

	return keyedMatch(mc, m.Name(), candidatesP, candidatesS, strictKeyP, strictKeyS)
}
