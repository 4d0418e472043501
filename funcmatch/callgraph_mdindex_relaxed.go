package funcmatch

import (
	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// CallGraphMDIndexRelaxed keys a function by BFS-level (not
// back-edge-free longest-path) MD-index in the call graph, used as a
// fallback when the two call graphs' loop structure differs too much
// for CallGraphMDIndex to agree (spec.md §4.5.6).
type CallGraphMDIndexRelaxed struct{}

func (CallGraphMDIndexRelaxed) Name() string { return "callgraph_mdindex_relaxed" }

func (CallGraphMDIndexRelaxed) StrictEquivalence() bool { return false }

func (m CallGraphMDIndexRelaxed) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	candidatesP, candidatesS []*graph.Function) (bool, error) {
	keyFor := func(cg *graph.CallGraph) map[uint64][2]float64 {
		td := feature.CallVertexMD(cg, feature.CallLevelsRelaxed(cg, feature.Forward))
		bu := feature.CallVertexMD(cg, feature.CallLevelsRelaxed(cg, feature.Reverse))
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
