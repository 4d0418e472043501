package bbmatch

import (
	"sort"

	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// EntryExitNodes matches the zero-in-degree blocks (entry nodes) and,
// separately, the zero-out-degree blocks (exit nodes) of a function by
// relative address order (spec.md §4.6.12).
type EntryExitNodes struct{}

func (EntryExitNodes) Name() string { return "entry_exit_nodes" }

func (m EntryExitNodes) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	primaryFn, secondaryFn *graph.Function, candidatesP, candidatesS []*graph.BasicBlock) (bool, error) {
	entries := func(fn *graph.Function, candidates []*graph.BasicBlock) []*graph.BasicBlock {
		var out []*graph.BasicBlock
		for _, bb := range candidates {
			if len(fn.Flow.Predecessors(bb.Entry)) == 0 {
				out = append(out, bb)
			}
		}

		return out
	}
	exits := func(fn *graph.Function, candidates []*graph.BasicBlock) []*graph.BasicBlock {
		var out []*graph.BasicBlock
		for _, bb := range candidates {
			if len(fn.Flow.Successors(bb.Entry)) == 0 {
				out = append(out, bb)
			}
		}

		return out
	}

	matched := false
	for _, pair := range [][2][]*graph.BasicBlock{
		{entries(primaryFn, candidatesP), entries(secondaryFn, candidatesS)},
		{exits(primaryFn, candidatesP), exits(secondaryFn, candidatesS)},
	} {
		p, s := pair[0], pair[1]
		if len(p) == 0 || len(p) != len(s) {
			continue
		}
		sort.Slice(p, func(i, j int) bool { return p[i].Entry < p[j].Entry })
		sort.Slice(s, func(i, j int) bool { return s[i].Entry < s[j].Entry })
		for i := range p {
			_, inserted, err := mc.Store.AddBasicBlock(parent.ID, p[i].Entry, s[i].Entry, m.Name())
			if err != nil {
				return matched, err
			}
			if inserted {
				matched = true
			}
		}
	}

	return matched, nil
}
