package funcmatch

import (
	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// EdgesFlowMDIndex matches call-graph edges (caller, callee) keyed by
// (MD(caller), MD(callee)), where each endpoint's MD is its own flow
// graph's vertex-MD sum — spec.md §4.5.1's literal edge key, strong
// when both endpoints are structurally unique. Matches both endpoints
// together when an edge's key is unique among the still-unmatched
// candidate edges on both sides.
type EdgesFlowMDIndex struct{}

func (EdgesFlowMDIndex) Name() string { return "edges_flow_mdindex" }

func (EdgesFlowMDIndex) StrictEquivalence() bool { return false }

func (m EdgesFlowMDIndex) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	candidatesP, candidatesS []*graph.Function) (bool, error) {
	mdP := flowMDByFunction(mc, matchctx.Primary, candidatesP)
	mdS := flowMDByFunction(mc, matchctx.Secondary, candidatesS)

	keyP := func(e graph.CallEdge) (interface{}, bool) { return edgeKeyFromVertexMD(mdP, e) }
	keyS := func(e graph.CallEdge) (interface{}, bool) { return edgeKeyFromVertexMD(mdS, e) }

	return keyedCallEdgeMatch(mc, m.Name(), candidatesP, candidatesS, keyP, keyS)
}

// flowMDByFunction resolves each candidate's own flow-graph vertex-MD
// sum — an intrinsic per-function fingerprint, independent of the call
// graph's own structure (contrast feature.CallVertexMD, used by
// EdgesCallGraphMDIndex).
func flowMDByFunction(mc *matchctx.Context, side matchctx.Side, candidates []*graph.Function) map[uint64]float64 {
	out := make(map[uint64]float64, len(candidates))
	for _, fn := range candidates {
		if fn.Flow == nil {
			continue
		}
		vertexMD, err := mc.FlowCache(side, fn.Entry).VertexMD(fn.Flow, feature.Forward)
		if err != nil {
			continue
		}
		out[fn.Entry] = sumFloatMap(vertexMD)
	}

	return out
}

// edgeKeyFromVertexMD builds a call edge's (MD(From), MD(To)) key from
// a per-function scalar map, failing if either endpoint has none.
func edgeKeyFromVertexMD(md map[uint64]float64, e graph.CallEdge) (interface{}, bool) {
	u, ok := md[e.From]
	if !ok {
		return nil, false
	}
	v, ok := md[e.To]
	if !ok {
		return nil, false
	}

	return [2]float64{u, v}, true
}
