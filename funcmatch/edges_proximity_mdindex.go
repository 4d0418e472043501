package funcmatch

import (
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// EdgesProximityMDIndex matches call-graph edges keyed by
// (proximityMD(caller), proximityMD(callee)), each endpoint's value
// being the 2-hop proximity MD-index sum of its own flow graph — spec.md
// §4.5.3's literal per-edge key, matching both endpoints together the
// same way EdgesFlowMDIndex does.
type EdgesProximityMDIndex struct{}

func (EdgesProximityMDIndex) Name() string { return "edges_proximity_mdindex" }

func (EdgesProximityMDIndex) StrictEquivalence() bool { return false }

func (m EdgesProximityMDIndex) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	candidatesP, candidatesS []*graph.Function) (bool, error) {
	mdFor := func(side matchctx.Side, candidates []*graph.Function) map[uint64]float64 {
		out := make(map[uint64]float64, len(candidates))
		for _, fn := range candidates {
			if fn.Flow == nil {
				continue
			}
			md, err := mc.FlowCache(side, fn.Entry).ProximityMD(fn.Flow)
			if err != nil {
				continue
			}
			out[fn.Entry] = sumFloatMap(md)
		}

		return out
	}

	mdP := mdFor(matchctx.Primary, candidatesP)
	mdS := mdFor(matchctx.Secondary, candidatesS)

	keyP := func(e graph.CallEdge) (interface{}, bool) { return edgeKeyFromVertexMD(mdP, e) }
	keyS := func(e graph.CallEdge) (interface{}, bool) { return edgeKeyFromVertexMD(mdS, e) }

	return keyedCallEdgeMatch(mc, m.Name(), candidatesP, candidatesS, keyP, keyS)
}
