package bbmatch

import (
	"sort"

	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// UniqueEdgeClosure runs the post-pipeline propagation pass of spec.md
// §4.6's last paragraph: while any matched block has exactly one
// unmatched child (or exactly one unmatched parent) on each side, match
// them with no content check, repeating to a fixed point. Returns the
// number of new basic-block fixed points recorded.
func UniqueEdgeClosure(mc *matchctx.Context, parent *fixedpoint.Function, primaryFn, secondaryFn *graph.Function) (int, error) {
	total := 0
	for {
		progressed, err := closurePass(mc, parent, primaryFn, secondaryFn)
		if err != nil {
			return total, err
		}
		if !progressed {
			return total, nil
		}
		total++
	}
}

func closurePass(mc *matchctx.Context, parent *fixedpoint.Function, primaryFn, secondaryFn *graph.Function) (bool, error) {
	matchedP, matchedS := matchedBlockAddresses(parent)

	primaryAddrs := make([]uint64, 0, len(matchedP))
	for addr := range matchedP {
		primaryAddrs = append(primaryAddrs, addr)
	}
	sort.Slice(primaryAddrs, func(i, j int) bool { return primaryAddrs[i] < primaryAddrs[j] })

	for _, primaryAddr := range primaryAddrs {
		secondaryAddr := matchedP[primaryAddr]
		if matchedS[secondaryAddr] != primaryAddr {
			continue
		}
		if ok, err := tryCloseOneSide(mc, parent, primaryFn, secondaryFn, graph.BlockID(primaryAddr), graph.BlockID(secondaryAddr), matchedP, true); ok || err != nil {
			return ok, err
		}
		if ok, err := tryCloseOneSide(mc, parent, primaryFn, secondaryFn, graph.BlockID(primaryAddr), graph.BlockID(secondaryAddr), matchedP, false); ok || err != nil {
			return ok, err
		}
	}

	return false, nil
}

// matchedBlockAddresses returns the set of already-matched primary and
// secondary block addresses within parent, as a primary->secondary map
// and a secondary->primary map.
func matchedBlockAddresses(parent *fixedpoint.Function) (map[uint64]uint64, map[uint64]uint64) {
	matchedP := make(map[uint64]uint64, len(parent.BasicBlocks))
	matchedS := make(map[uint64]uint64, len(parent.BasicBlocks))
	for _, bb := range parent.BasicBlocks {
		matchedP[bb.PrimaryBlock] = bb.SecondaryBlock
		matchedS[bb.SecondaryBlock] = bb.PrimaryBlock
	}

	return matchedP, matchedS
}

func tryCloseOneSide(mc *matchctx.Context, parent *fixedpoint.Function, primaryFn, secondaryFn *graph.Function,
	primaryAddr, secondaryAddr graph.BlockID, matchedP map[uint64]uint64, children bool) (bool, error) {
	var unmatchedChildP, unmatchedChildS []graph.BlockID
	if children {
		unmatchedChildP = unmatchedNeighbors(primaryFn.Flow.Successors(primaryAddr), matchedP)
		unmatchedChildS = unmatchedNeighbors(secondaryFn.Flow.Successors(secondaryAddr), invert(matchedP))
	} else {
		unmatchedChildP = unmatchedNeighbors(primaryFn.Flow.Predecessors(primaryAddr), matchedP)
		unmatchedChildS = unmatchedNeighbors(secondaryFn.Flow.Predecessors(secondaryAddr), invert(matchedP))
	}

	if len(unmatchedChildP) != 1 || len(unmatchedChildS) != 1 {
		return false, nil
	}

	_, inserted, err := mc.Store.AddBasicBlock(parent.ID, uint64(unmatchedChildP[0]), uint64(unmatchedChildS[0]), "basic_block_propagation")
	if err != nil {
		return false, err
	}

	return inserted, nil
}

func unmatchedNeighbors(neighbors []graph.BlockID, matched map[uint64]uint64) []graph.BlockID {
	var out []graph.BlockID
	for _, n := range neighbors {
		if _, ok := matched[uint64(n)]; !ok {
			out = append(out, n)
		}
	}

	return out
}

func invert(m map[uint64]uint64) map[uint64]uint64 {
	out := make(map[uint64]uint64, len(m))
	for k, v := range m {
		out[v] = k
	}

	return out
}
