package bbmatch

import (
	"fmt"
	"sort"

	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// EdgesPrimeProduct matches edges keyed by
// prime(source) + prime(target) + 1 (spec.md §4.6.2).
type EdgesPrimeProduct struct {
	Primary, Secondary *PrimeTables
}

func (EdgesPrimeProduct) Name() string { return "edges_prime_product" }

func (m EdgesPrimeProduct) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	primaryFn, secondaryFn *graph.Function, candidatesP, candidatesS []*graph.BasicBlock) (bool, error) {
	if m.Primary == nil || m.Secondary == nil {
		return false, nil
	}

	edgesP, byIDP := candidateEdges(primaryFn.Flow, candidatesP)
	edgesS, byIDS := candidateEdges(secondaryFn.Flow, candidatesS)

	cacheP := mc.FlowCache(matchctx.Primary, primaryFn.Entry)
	cacheS := mc.FlowCache(matchctx.Secondary, secondaryFn.Entry)
	productsP := cacheP.PrimeProducts(primaryFn.Flow, m.Primary.Table)
	productsS := cacheS.PrimeProducts(secondaryFn.Flow, m.Secondary.Table)

	groupP := map[string][]graph.Edge{}
	for _, e := range edgesP {
		k := fmt.Sprint(feature.EdgePrime(productsP[e.Source], productsP[e.Target]))
		groupP[k] = append(groupP[k], e)
	}
	groupS := map[string][]graph.Edge{}
	for _, e := range edgesS {
		k := fmt.Sprint(feature.EdgePrime(productsS[e.Source], productsS[e.Target]))
		groupS[k] = append(groupS[k], e)
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
		did, err := addBlockPair(mc, m.Name(), parent.ID, byIDP[ep.Source], byIDP[ep.Target], byIDS[es.Source], byIDS[es.Target])
		if err != nil {
			return matched, err
		}
		matched = matched || did
	}

	return matched, nil
}
