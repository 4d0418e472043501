package funcmatch

import (
	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// EdgesCallGraphMDIndex matches call-graph edges keyed by the edge's own
// MD-index value on the call graph (spec.md §4.5.2's literal "key =
// edge's MD on the call graph") — feature.CallEdgeMD computed directly
// per edge, rather than aggregated per vertex. Matches both endpoints
// together when an edge's MD value is unique among the still-unmatched
// candidate edges on both sides.
type EdgesCallGraphMDIndex struct{}

func (EdgesCallGraphMDIndex) Name() string { return "edges_callgraph_mdindex" }

func (EdgesCallGraphMDIndex) StrictEquivalence() bool { return false }

func (m EdgesCallGraphMDIndex) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	candidatesP, candidatesS []*graph.Function) (bool, error) {
	mdFor := func(cg *graph.CallGraph) map[graph.CallEdge]float64 {
		levels := feature.CallLevels(cg, feature.Forward)

		return feature.CallEdgeMD(cg, levels)
	}
	mdP := mdFor(mc.Primary)
	mdS := mdFor(mc.Secondary)

	keyP := func(e graph.CallEdge) (interface{}, bool) { v, ok := mdP[e]; return v, ok }
	keyS := func(e graph.CallEdge) (interface{}, bool) { v, ok := mdS[e]; return v, ok }

	return keyedCallEdgeMatch(mc, m.Name(), candidatesP, candidatesS, keyP, keyS)
}
