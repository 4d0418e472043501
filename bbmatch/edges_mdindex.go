package bbmatch

import (
	"fmt"
	"sort"

	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// candidateEdges returns fg's edges whose both endpoints are present in
// candidates, along with a lookup from BlockID back to the candidate.
func candidateEdges(fg *graph.FlowGraph, candidates []*graph.BasicBlock) ([]graph.Edge, map[graph.BlockID]*graph.BasicBlock) {
	byID := make(map[graph.BlockID]*graph.BasicBlock, len(candidates))
	for _, bb := range candidates {
		byID[bb.Entry] = bb
	}

	var out []graph.Edge
	for _, e := range fg.Edges() {
		if byID[e.Source] != nil && byID[e.Target] != nil {
			out = append(out, e)
		}
	}

	return out, byID
}

// EdgesMDIndex matches edges (pairs of blocks) keyed by
// (MD(source), MD(target)), matching both endpoints together when the
// edge key is unique among candidate edges on both sides (spec.md
// §4.6.1).
type EdgesMDIndex struct{}

func (EdgesMDIndex) Name() string { return "edges_mdindex" }

func (m EdgesMDIndex) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	primaryFn, secondaryFn *graph.Function, candidatesP, candidatesS []*graph.BasicBlock) (bool, error) {
	edgesP, byIDP := candidateEdges(primaryFn.Flow, candidatesP)
	edgesS, byIDS := candidateEdges(secondaryFn.Flow, candidatesS)

	cacheP := mc.FlowCache(matchctx.Primary, primaryFn.Entry)
	cacheS := mc.FlowCache(matchctx.Secondary, secondaryFn.Entry)
	mdP, err := cacheP.VertexMD(primaryFn.Flow, feature.Forward)
	if err != nil {
		return false, err
	}
	mdS, err := cacheS.VertexMD(secondaryFn.Flow, feature.Forward)
	if err != nil {
		return false, err
	}

	type keyed struct {
		key string
		e   graph.Edge
	}
	groupP := map[string][]graph.Edge{}
	for _, e := range edgesP {
		k := fmt.Sprint([2]float64{mdP[e.Source], mdP[e.Target]})
		groupP[k] = append(groupP[k], e)
	}
	groupS := map[string][]graph.Edge{}
	for _, e := range edgesS {
		k := fmt.Sprint([2]float64{mdS[e.Source], mdS[e.Target]})
		groupS[k] = append(groupS[k], e)
	}

	keys := make([]string, 0, len(groupP))
	for k := range groupP {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	matched := false
	for _, k := range keys {
		ps := groupP[k]
		ss := groupS[k]
		if len(ps) != 1 || len(ss) != 1 {
			continue
		}
		ep, es := ps[0], ss[0]
		did, err := addBlockPair(mc, m.Name(), parent.ID, byIDP[ep.Source], byIDP[ep.Target], byIDS[es.Source], byIDS[es.Target])
		if err != nil {
			return matched, err
		}
		matched = matched || did
	}

	return matched, nil
}
