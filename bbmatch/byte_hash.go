package bbmatch

import (
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// minNonTrivialInstructions is the default k of spec.md §4.6.5's
// "≥ k instructions, k configurable, default 4". config.PipelineConfig
// carries no per-matcher numeric knobs today, so k is fixed here rather
// than threaded through as configuration — see DESIGN.md.
const minNonTrivialInstructions = 4

// ByteHash keys a basic block with at least minNonTrivialInstructions
// instructions by the FNV-1a hash of its concatenated instruction bytes
// (spec.md §4.6.5).
type ByteHash struct{}

func (ByteHash) Name() string { return "bb_byte_hash" }

func (m ByteHash) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	primaryFn, secondaryFn *graph.Function, candidatesP, candidatesS []*graph.BasicBlock) (bool, error) {
	key := func(side matchctx.Side, fn *graph.Function) func(*graph.BasicBlock) (interface{}, bool) {
		cache := mc.FlowCache(side, fn.Entry)

		return func(bb *graph.BasicBlock) (interface{}, bool) {
			if bb.InstructionCount() < minNonTrivialInstructions {
				return nil, false
			}

			return cache.ByteHashes(fn.Flow)[bb.Entry], true
		}
	}

	return keyedBBMatch(mc, m.Name(), parent.ID, candidatesP, candidatesS,
		key(matchctx.Primary, primaryFn), key(matchctx.Secondary, secondaryFn))
}
