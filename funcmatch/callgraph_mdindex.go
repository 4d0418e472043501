package funcmatch

import (
	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// CallGraphMDIndex keys a function by its own (top-down, bottom-up)
// vertex MD-index pair within the call graph (spec.md §4.5.4).
type CallGraphMDIndex struct{}

func (CallGraphMDIndex) Name() string { return "callgraph_mdindex" }

func (CallGraphMDIndex) StrictEquivalence() bool { return false }

func (m CallGraphMDIndex) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	candidatesP, candidatesS []*graph.Function) (bool, error) {
	keyFor := func(cg *graph.CallGraph) map[uint64][2]float64 {
		td := feature.CallVertexMD(cg, feature.CallLevels(cg, feature.Forward))
		bu := feature.CallVertexMD(cg, feature.CallLevels(cg, feature.Reverse))
		out := make(map[uint64][2]float64, len(td))
		for addr, v := range td {
			out[addr] = [2]float64{v, bu[addr]}
		}

		return out
	}
	pMD := keyFor(mc.Primary)
	sMD := keyFor(mc.Secondary)

	keyP := func(fn *graph.Function) (interface{}, bool) { v, ok := pMD[fn.Entry]; return v, ok }
	keyS := func(fn *graph.Function) (interface{}, bool) { v, ok := sMD[fn.Entry]; return v, ok }

	return keyedMatch(mc, m.Name(), candidatesP, candidatesS, keyP, keyS)
}
