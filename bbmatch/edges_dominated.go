package bbmatch

import (
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// EdgesDominated propagates along back edges only (spec.md §4.6.3:
// "only back-edges, keyed by 1 (propagation only)") — every back edge
// shares the same constant key, so this only ever matches when exactly
// one back edge among the candidate blocks remains unmatched on each
// side, the same uniqueness gate every other strategy applies, just
// with a trivial key.
type EdgesDominated struct{}

func (EdgesDominated) Name() string { return "edges_dominated" }

func (m EdgesDominated) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	primaryFn, secondaryFn *graph.Function, candidatesP, candidatesS []*graph.BasicBlock) (bool, error) {
	backP, err := candidateBackEdges(mc, matchctx.Primary, primaryFn, candidatesP)
	if err != nil {
		return false, err
	}
	backS, err := candidateBackEdges(mc, matchctx.Secondary, secondaryFn, candidatesS)
	if err != nil {
		return false, err
	}
	if len(backP) != 1 || len(backS) != 1 {
		return false, nil
	}

	_, byIDP := candidateEdges(primaryFn.Flow, candidatesP)
	_, byIDS := candidateEdges(secondaryFn.Flow, candidatesS)

	return addBlockPair(mc, m.Name(), parent.ID, byIDP[backP[0].Source], byIDP[backP[0].Target],
		byIDS[backS[0].Source], byIDS[backS[0].Target])
}

func candidateBackEdges(mc *matchctx.Context, side matchctx.Side, fn *graph.Function, candidates []*graph.BasicBlock) ([]graph.Edge, error) {
	cache := mc.FlowCache(side, fn.Entry)
	back, err := cache.BackEdges(fn.Flow)
	if err != nil {
		return nil, err
	}

	inSet := make(map[graph.BlockID]bool, len(candidates))
	for _, bb := range candidates {
		inSet[bb.Entry] = true
	}

	var out []graph.Edge
	for _, e := range back {
		if inSet[e.Source] && inSet[e.Target] {
			out = append(out, e)
		}
	}

	return out, nil
}
