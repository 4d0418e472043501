package funcmatch

import (
	"sort"

	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// AddressSequence matches the remaining candidates by relative address
// order, used as the last-resort tiebreaker of spec.md §4.5.14 once
// every other strategy has reduced the ambiguous set down to equal
// cardinality on both sides: it only fires when that cardinality match
// holds, and, as a strict-equivalence step, it accepts a positional
// pair only when both functions' flow-graph MD-index sums are equal.
type AddressSequence struct{}

func (AddressSequence) Name() string { return "address_sequence" }

func (AddressSequence) StrictEquivalence() bool { return true }

func (m AddressSequence) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	candidatesP, candidatesS []*graph.Function) (bool, error) {
	if len(candidatesP) == 0 || len(candidatesP) != len(candidatesS) {
		return false, nil
	}

	orderedP := append([]*graph.Function(nil), candidatesP...)
	orderedS := append([]*graph.Function(nil), candidatesS...)
	sort.Slice(orderedP, func(i, j int) bool { return orderedP[i].Entry < orderedP[j].Entry })
	sort.Slice(orderedS, func(i, j int) bool { return orderedS[i].Entry < orderedS[j].Entry })

	flowMD := func(side matchctx.Side, fn *graph.Function) (float64, bool) {
		if fn.Flow == nil {
			return 0, false
		}
		md, err := mc.FlowCache(side, fn.Entry).VertexMD(fn.Flow, feature.Forward)

		return sumFloatMap(md), err == nil
	}

	matched := false
	for i := range orderedP {
		mdP, okP := flowMD(matchctx.Primary, orderedP[i])
		mdS, okS := flowMD(matchctx.Secondary, orderedS[i])
		if !okP || !okS || mdP != mdS {
			continue
		}
		_, inserted, err := mc.Store.Add(orderedP[i], orderedS[i], m.Name())
		if err != nil {
			return matched, err
		}
		if inserted {
			matched = true
		}
	}

	return matched, nil
}
