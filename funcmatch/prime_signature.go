package funcmatch

import (
	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// PrimeTableProvider wraps one side's program-wide mnemonic-frequency
// prime table, built once (by the driver, from every function's
// instructions) before matching starts, so every matcher that needs a
// prime signature shares the same assignment of primes to mnemonics.
type PrimeTableProvider struct {
	Table *feature.PrimeTable
}

// NewPrimeTableProvider builds a PrimeTableProvider from the mnemonic
// occurrence counts of every function in cg.
func NewPrimeTableProvider(cg *graph.CallGraph) *PrimeTableProvider {
	counts := map[int]int{}
	for _, fn := range cg.Functions() {
		if fn.Flow == nil {
			continue
		}
		for _, bb := range fn.Flow.Blocks() {
			for _, idx := range feature.BlockMnemonics(fn, bb) {
				counts[idx]++
			}
		}
	}

	return &PrimeTableProvider{Table: feature.BuildPrimeTable(counts)}
}

// PrimeSignature keys a function by the order-independent product of
// its instructions' assigned primes (spec.md §4.5.10).
type PrimeSignature struct {
	Primary, Secondary *PrimeTableProvider
}

func (PrimeSignature) Name() string { return "prime_signature" }

func (PrimeSignature) StrictEquivalence() bool { return false }

func (m PrimeSignature) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	candidatesP, candidatesS []*graph.Function) (bool, error) {
	key := func(pt *feature.PrimeTable) func(*graph.Function) (interface{}, bool) {
		return func(fn *graph.Function) (interface{}, bool) {
			if fn.Flow == nil || pt == nil {
				return nil, false
			}
			var mnemonics []int
			for _, bb := range fn.Flow.Blocks() {
				mnemonics = append(mnemonics, feature.BlockMnemonics(fn, bb)...)
			}

			return pt.Product(mnemonics), true
		}
	}

	var primaryTable, secondaryTable *feature.PrimeTable
	if m.Primary != nil {
		primaryTable = m.Primary.Table
	}
	if m.Secondary != nil {
		secondaryTable = m.Secondary.Table
	}

	return keyedMatch(mc, m.Name(), candidatesP, candidatesS, key(primaryTable), key(secondaryTable))
}
