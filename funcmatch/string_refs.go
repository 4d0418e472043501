package funcmatch

import (
	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// StringRefs keys a function by the combined hash of the relocatable
// string symbols its instructions reference (spec.md §4.5.12).
// Functions referencing no strings are excluded — a shared empty key
// would otherwise spuriously "match" every string-free function pair.
type StringRefs struct{}

func (StringRefs) Name() string { return "string_refs" }

func (StringRefs) StrictEquivalence() bool { return false }

func (m StringRefs) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	candidatesP, candidatesS []*graph.Function) (bool, error) {
	key := func(cg *graph.CallGraph) func(*graph.Function) (interface{}, bool) {
		return func(fn *graph.Function) (interface{}, bool) {
			if fn.Flow == nil {
				return nil, false
			}
			refs := graph.FunctionStringRefs(cg.Arena(), fn.Flow)
			if len(refs) == 0 {
				return nil, false
			}

			return feature.StringRefHash(refs), true
		}
	}

	return keyedMatch(mc, m.Name(), candidatesP, candidatesS, key(mc.Primary), key(mc.Secondary))
}
