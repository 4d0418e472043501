package bbmatch

import (
	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// StringRefs keys a basic block by the combined hash of the
// relocatable string symbols its instructions reference (spec.md
// §4.6.8).
type StringRefs struct{}

func (StringRefs) Name() string { return "bb_string_refs" }

func (m StringRefs) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	primaryFn, secondaryFn *graph.Function, candidatesP, candidatesS []*graph.BasicBlock) (bool, error) {
	key := func(fn *graph.Function, cg *graph.CallGraph) func(*graph.BasicBlock) (interface{}, bool) {
		return func(bb *graph.BasicBlock) (interface{}, bool) {
			refs := graph.StringRefs(cg.Arena(), fn, bb)
			if len(refs) == 0 {
				return nil, false
			}

			return feature.StringRefHash(refs), true
		}
	}

	return keyedBBMatch(mc, m.Name(), parent.ID, candidatesP, candidatesS,
		key(primaryFn, mc.Primary), key(secondaryFn, mc.Secondary))
}
