package bbmatch

import (
	"sort"

	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// jumpSequenceScale converts a floating MD value into an integer
// bucket, coarse enough that structurally near-identical blocks land
// together, per spec.md §4.6.14's "MD index scaled to integer".
const jumpSequenceScale = 1000.0

// JumpSequence keys a basic block by (MD bucket, ordinal rank within
// that bucket by address), the bucket tolerating small MD differences
// and the rank breaking ties deterministically (spec.md §4.6.14).
type JumpSequence struct{}

func (JumpSequence) Name() string { return "jump_sequence" }

func (m JumpSequence) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	primaryFn, secondaryFn *graph.Function, candidatesP, candidatesS []*graph.BasicBlock) (bool, error) {
	keyP, err := jumpSequenceKeys(mc, matchctx.Primary, primaryFn, candidatesP)
	if err != nil {
		return false, err
	}
	keyS, err := jumpSequenceKeys(mc, matchctx.Secondary, secondaryFn, candidatesS)
	if err != nil {
		return false, err
	}

	key := func(keys map[graph.BlockID]interface{}) func(*graph.BasicBlock) (interface{}, bool) {
		return func(bb *graph.BasicBlock) (interface{}, bool) {
			k, ok := keys[bb.Entry]

			return k, ok
		}
	}

	return keyedBBMatch(mc, m.Name(), parent.ID, candidatesP, candidatesS, key(keyP), key(keyS))
}

func jumpSequenceKeys(mc *matchctx.Context, side matchctx.Side, fn *graph.Function, candidates []*graph.BasicBlock) (map[graph.BlockID]interface{}, error) {
	cache := mc.FlowCache(side, fn.Entry)
	md, err := cache.VertexMD(fn.Flow, feature.Forward)
	if err != nil {
		return nil, err
	}

	buckets := map[int64][]*graph.BasicBlock{}
	for _, bb := range candidates {
		bucket := int64(md[bb.Entry] * jumpSequenceScale)
		buckets[bucket] = append(buckets[bucket], bb)
	}

	out := make(map[graph.BlockID]interface{}, len(candidates))
	for bucket, blocks := range buckets {
		sort.Slice(blocks, func(i, j int) bool { return blocks[i].Entry < blocks[j].Entry })
		for rank, bb := range blocks {
			out[bb.Entry] = [2]int64{bucket, int64(rank)}
		}
	}

	return out, nil
}
