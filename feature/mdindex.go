package feature

import (
	"math"

	"github.com/flowmatch/bindiff/graph"
)

// MD-index weight constants, fixed by spec so that independently built
// implementations sum to bit-identical values for isomorphic graphs.
var (
	wLU    = math.Sqrt(2)
	wDUIn  = math.Sqrt(3)
	wDUOut = math.Sqrt(5)
	wLV    = math.Sqrt(7)
	wDVIn  = math.Sqrt(11)
	wDVOut = math.Sqrt(13)
)

// edgeMD computes the top-down (or bottom-up, depending on which level
// map is passed) MD value of a single directed edge (u, v).
func edgeMD(lu, lv, duIn, duOut, dvIn, dvOut int) float64 {
	return wLU*float64(lu) + wDUIn*float64(duIn) + wDUOut*float64(duOut) +
		wLV*float64(lv) + wDVIn*float64(dvIn) + wDVOut*float64(dvOut)
}

// FlowEdgeMD computes the MD-index of every edge in fg using the given
// precomputed levels, returned keyed by (source, target) and also as a
// slice in ascending (source, target, type) order — the order MD-index
// vertex sums must be accumulated in, per spec.md §5.
func FlowEdgeMD(fg *graph.FlowGraph, levels map[graph.BlockID]int) (map[graph.Edge]float64, []graph.Edge) {
	edges := fg.Edges()
	inDeg := map[graph.BlockID]int{}
	outDeg := map[graph.BlockID]int{}
	for _, e := range edges {
		outDeg[e.Source]++
		inDeg[e.Target]++
	}

	out := make(map[graph.Edge]float64, len(edges))
	for _, e := range edges {
		out[e] = edgeMD(levels[e.Source], levels[e.Target],
			inDeg[e.Source], outDeg[e.Source], inDeg[e.Target], outDeg[e.Target])
	}

	return out, edges
}

// FlowVertexMD sums the MD value of every edge incident to each block
// (as source or as target), in ascending edge order, so the sum is
// associative and reproducible across runs.
func FlowVertexMD(fg *graph.FlowGraph, levels map[graph.BlockID]int) map[graph.BlockID]float64 {
	edgeMDs, edges := FlowEdgeMD(fg, levels)
	out := make(map[graph.BlockID]float64, len(fg.Blocks()))
	for _, e := range edges {
		v := edgeMDs[e]
		out[e.Source] += v
		out[e.Target] += v
	}

	return out
}

// FlowProximityMD restricts the vertex sum to edges within two hops of
// the vertex (inclusive of edges incident to a direct neighbor),
// per spec.md §3's "noise-tolerant" proximity variant.
func FlowProximityMD(fg *graph.FlowGraph, levels map[graph.BlockID]int) map[graph.BlockID]float64 {
	edgeMDs, edges := FlowEdgeMD(fg, levels)

	neighbors := map[graph.BlockID]map[graph.BlockID]bool{}
	for _, e := range edges {
		if neighbors[e.Source] == nil {
			neighbors[e.Source] = map[graph.BlockID]bool{}
		}
		if neighbors[e.Target] == nil {
			neighbors[e.Target] = map[graph.BlockID]bool{}
		}
		neighbors[e.Source][e.Target] = true
		neighbors[e.Target][e.Source] = true
	}

	withinTwoHops := func(v graph.BlockID) map[graph.BlockID]bool {
		reach := map[graph.BlockID]bool{v: true}
		for n1 := range neighbors[v] {
			reach[n1] = true
			for n2 := range neighbors[n1] {
				reach[n2] = true
			}
		}

		return reach
	}

	out := make(map[graph.BlockID]float64, len(fg.Blocks()))
	for _, bb := range fg.Blocks() {
		reach := withinTwoHops(bb.Entry)
		var sum float64
		for _, e := range edges {
			if reach[e.Source] && reach[e.Target] {
				sum += edgeMDs[e]
			}
		}
		out[bb.Entry] = sum
	}

	return out
}

// CallEdgeMD computes the MD-index of every call-graph edge using the
// given precomputed levels. Parallel (duplicate) edges each get their
// own MD value (duplicates are not collapsed), matching the call
// graph's multigraph semantics.
func CallEdgeMD(cg *graph.CallGraph, levels map[uint64]int) map[graph.CallEdge]float64 {
	edges := cg.CallEdges()
	inDeg := map[uint64]int{}
	outDeg := map[uint64]int{}
	for _, e := range edges {
		outDeg[e.From]++
		inDeg[e.To]++
	}

	out := make(map[graph.CallEdge]float64, len(edges))
	for _, e := range edges {
		out[e] = edgeMD(levels[e.From], levels[e.To],
			inDeg[e.From], outDeg[e.From], inDeg[e.To], outDeg[e.To])
	}

	return out
}

// CallVertexMD sums the MD value of every call-site edge incident to
// each function, in ascending (From, To, Site) edge order.
func CallVertexMD(cg *graph.CallGraph, levels map[uint64]int) map[uint64]float64 {
	mds := CallEdgeMD(cg, levels)
	edges := cg.CallEdges()

	out := make(map[uint64]float64, len(cg.Functions()))
	for _, e := range edges {
		v := mds[e]
		out[e.From] += v
		out[e.To] += v
	}

	return out
}
