package funcmatch

import (
	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// NameHash keys a function by the SDBM hash of its demangled (or
// mangled) name, restricted to functions carrying a real,
// non-auto-generated name (spec.md §4.5.7).
type NameHash struct{}

func (NameHash) Name() string { return "name_hash" }

func (NameHash) StrictEquivalence() bool { return false }

func (m NameHash) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	candidatesP, candidatesS []*graph.Function) (bool, error) {
	key := func(fn *graph.Function) (interface{}, bool) {
		h, ok := feature.NameHash(fn)

		return h, ok
	}

	return keyedMatch(mc, m.Name(), candidatesP, candidatesS, key, key)
}
