package bbmatch

import (
	"fmt"
	"sort"

	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// keyedBBMatch is the basic-block analogue of funcmatch's keyedMatch:
// groups both candidate block sets by a comparable key and records a
// basic-block fixed point, under parentID, for every key value unique
// on both sides.
func keyedBBMatch(mc *matchctx.Context, step string, parentID fixedpoint.ID, candidatesP, candidatesS []*graph.BasicBlock,
	keyP, keyS func(*graph.BasicBlock) (interface{}, bool)) (bool, error) {
	pByKey := map[string][]*graph.BasicBlock{}
	for _, bb := range candidatesP {
		if k, ok := keyP(bb); ok {
			s := fmt.Sprint(k)
			pByKey[s] = append(pByKey[s], bb)
		}
	}
	sByKey := map[string][]*graph.BasicBlock{}
	for _, bb := range candidatesS {
		if k, ok := keyS(bb); ok {
			s := fmt.Sprint(k)
			sByKey[s] = append(sByKey[s], bb)
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
		_, inserted, err := mc.Store.AddBasicBlock(parentID, ps[0].Entry, ss[0].Entry, step)
		if err != nil {
			return matched, fmt.Errorf("bbmatch: %s: %w", step, err)
		}
		if inserted {
			matched = true
		}
	}

	return matched, nil
}

// addBlockPair records both endpoints of a structurally matched edge as
// independent basic-block fixed points, used by the "Edges: *" family
// which matches edges (pairs of blocks) rather than single vertices.
func addBlockPair(mc *matchctx.Context, step string, parentID fixedpoint.ID, srcP, dstP, srcS, dstS *graph.BasicBlock) (bool, error) {
	matched := false
	_, inserted, err := mc.Store.AddBasicBlock(parentID, srcP.Entry, srcS.Entry, step)
	if err != nil {
		return matched, err
	}
	if inserted {
		matched = true
	}
	_, inserted, err = mc.Store.AddBasicBlock(parentID, dstP.Entry, dstS.Entry, step)
	if err != nil {
		return matched, err
	}
	if inserted {
		matched = true
	}

	return matched, nil
}
