package bbmatch

import (
	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// PrimeTables wraps one side's program-wide mnemonic-frequency prime
// table, shared by every basic-block matcher that keys on a prime
// signature.
type PrimeTables struct {
	Table *feature.PrimeTable
}

// Prime keys a basic block with at least minNonTrivialInstructions
// instructions by its mnemonic prime-signature product (spec.md
// §4.6.6).
type Prime struct {
	Primary, Secondary *PrimeTables
}

func (Prime) Name() string { return "bb_prime" }

func (m Prime) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	primaryFn, secondaryFn *graph.Function, candidatesP, candidatesS []*graph.BasicBlock) (bool, error) {
	key := func(side matchctx.Side, fn *graph.Function, pts *PrimeTables) func(*graph.BasicBlock) (interface{}, bool) {
		cache := mc.FlowCache(side, fn.Entry)

		return func(bb *graph.BasicBlock) (interface{}, bool) {
			if pts == nil || bb.InstructionCount() < minNonTrivialInstructions {
				return nil, false
			}
			products := cache.PrimeProducts(fn.Flow, pts.Table)

			return products[bb.Entry], true
		}
	}

	return keyedBBMatch(mc, m.Name(), parent.ID, candidatesP, candidatesS,
		key(matchctx.Primary, primaryFn, m.Primary), key(matchctx.Secondary, secondaryFn, m.Secondary))
}
