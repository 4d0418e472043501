package funcmatch

import (
	"fmt"
	"sort"

	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// keyedMatch groups candidatesP/candidatesS by a comparable key and
// records a fixed point, via mc.Store, for every key value that has
// exactly one candidate on each side — the uniqueness gate at the heart
// of every MD-index-family matcher in spec.md §4.5. Keys that fail
// either keyP or keyS (ok == false) are excluded from matching
// entirely, not treated as a shared "no key" bucket.
func keyedMatch(mc *matchctx.Context, step string, candidatesP, candidatesS []*graph.Function,
	keyP, keyS func(*graph.Function) (interface{}, bool)) (bool, error) {
	pByKey := map[string][]*graph.Function{}
	for _, fn := range candidatesP {
		if k, ok := keyP(fn); ok {
			s := fmt.Sprint(k)
			pByKey[s] = append(pByKey[s], fn)
		}
	}
	sByKey := map[string][]*graph.Function{}
	for _, fn := range candidatesS {
		if k, ok := keyS(fn); ok {
			s := fmt.Sprint(k)
			sByKey[s] = append(sByKey[s], fn)
		}
	}

	keys := make([]string, 0, len(pByKey))
	for k := range pByKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	matched := false
	for _, k := range keys {
		ps := pByKey[k]
		ss := sByKey[k]
		if len(ps) != 1 || len(ss) != 1 {
			continue
		}
		_, inserted, err := mc.Store.Add(ps[0], ss[0], step)
		if err != nil {
			return matched, fmt.Errorf("funcmatch: %s: %w", step, err)
		}
		if inserted {
			matched = true
		}
	}

	return matched, nil
}

// candidateCallEdges returns cg's call edges whose both endpoints are
// present in candidates, along with a lookup from function address back
// to the candidate — the function-level analogue of bbmatch's
// candidateEdges, restricting the "Edges: *" family (spec.md §4.5.1-3)
// to edges between two still-unmatched functions.
func candidateCallEdges(cg *graph.CallGraph, candidates []*graph.Function) ([]graph.CallEdge, map[uint64]*graph.Function) {
	byAddr := make(map[uint64]*graph.Function, len(candidates))
	for _, fn := range candidates {
		byAddr[fn.Entry] = fn
	}

	var out []graph.CallEdge
	for _, e := range cg.CallEdges() {
		if byAddr[e.From] != nil && byAddr[e.To] != nil {
			out = append(out, e)
		}
	}

	return out, byAddr
}

// addFunctionPair records both endpoints of a structurally matched call
// edge as independent function fixed points, the function-level
// analogue of bbmatch's addBlockPair.
func addFunctionPair(mc *matchctx.Context, step string, srcP, dstP, srcS, dstS *graph.Function) (bool, error) {
	matched := false
	_, inserted, err := mc.Store.Add(srcP, srcS, step)
	if err != nil {
		return matched, err
	}
	matched = matched || inserted

	_, inserted, err = mc.Store.Add(dstP, dstS, step)
	if err != nil {
		return matched, err
	}
	matched = matched || inserted

	return matched, nil
}

// keyedCallEdgeMatch groups the call edges between still-unmatched
// candidate functions by a comparable key and, for every key unique on
// both sides, matches both the caller and the callee — the literal
// per-edge "(u, v)" key of spec.md §4.5.1-3, rather than collapsing
// each function to a single vertex-aggregate key the way the
// vertex-level strategies (§4.5.4-6) do.
func keyedCallEdgeMatch(mc *matchctx.Context, step string, candidatesP, candidatesS []*graph.Function,
	keyP, keyS func(graph.CallEdge) (interface{}, bool)) (bool, error) {
	edgesP, byAddrP := candidateCallEdges(mc.Primary, candidatesP)
	edgesS, byAddrS := candidateCallEdges(mc.Secondary, candidatesS)

	groupP := map[string][]graph.CallEdge{}
	for _, e := range edgesP {
		if k, ok := keyP(e); ok {
			groupP[fmt.Sprint(k)] = append(groupP[fmt.Sprint(k)], e)
		}
	}
	groupS := map[string][]graph.CallEdge{}
	for _, e := range edgesS {
		if k, ok := keyS(e); ok {
			groupS[fmt.Sprint(k)] = append(groupS[fmt.Sprint(k)], e)
		}
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
		did, err := addFunctionPair(mc, step, byAddrP[ep.From], byAddrP[ep.To], byAddrS[es.From], byAddrS[es.To])
		if err != nil {
			return matched, fmt.Errorf("funcmatch: %s: %w", step, err)
		}
		matched = matched || did
	}

	return matched, nil
}

// sumFloatMap sums m's values in ascending BlockID order. Go randomizes
// map iteration order and float addition is not associative, so summing
// in iteration order would make the result — used directly as a match
// key by callers — depend on the randomized order rather than on the
// multiset of values, breaking P5/P6 determinism.
func sumFloatMap(m map[graph.BlockID]float64) float64 {
	ids := make([]graph.BlockID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var sum float64
	for _, id := range ids {
		sum += m[id]
	}

	return sum
}
