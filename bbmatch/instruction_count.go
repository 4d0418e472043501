package bbmatch

import (
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// InstructionCount keys a basic block by its instruction count
// (spec.md §4.6.13).
type InstructionCount struct{}

func (InstructionCount) Name() string { return "bb_instruction_count" }

func (m InstructionCount) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	primaryFn, secondaryFn *graph.Function, candidatesP, candidatesS []*graph.BasicBlock) (bool, error) {
	key := func(bb *graph.BasicBlock) (interface{}, bool) { return bb.InstructionCount(), true }

	return keyedBBMatch(mc, m.Name(), parent.ID, candidatesP, candidatesS, key, key)
}
