package funcmatch

import (
	"sort"
	"sync"

	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// Matcher is one function-level matching strategy. Parent is non-nil
// only for the call-sequence family, which propagates from an
// already-matched caller (spec.md §4.5's "Parents are non-null only for
// the 'call sequence' family").
type Matcher interface {
	Name() string
	FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function, candidatesP, candidatesS []*graph.Function) (bool, error)

	// StrictEquivalence reports whether this strategy accepts a
	// candidate pair only when the two functions' flow-graph MD-index
	// sums are equal (spec.md §4.7's strict-equivalence gate, carried
	// per-step per original_source/'s
	// call_graph_match_function_address_sequence.cc). The strategies
	// apply that check themselves; the driver does not consult this flag.
	StrictEquivalence() bool
}

// Registry holds the built-in and any custom matchers, keyed by name,
// mirroring tsp/solve.go's named-strategy dispatch table.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Matcher
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Matcher)}
}

// Register adds m, keyed by m.Name(), overwriting any previous matcher
// registered under the same name.
func (r *Registry) Register(m Matcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[m.Name()] = m
}

// Get returns the matcher registered under name.
func (r *Registry) Get(name string) (Matcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byName[name]

	return m, ok
}

// Names returns every registered matcher name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	sort.Strings(out)

	return out
}

// NewBuiltinRegistry returns a Registry pre-populated with all fourteen
// built-in strategies of spec.md §4.5, using primaryPrimes/
// secondaryPrimes as the program-wide prime tables the prime-signature
// and byte-hash-adjacent strategies consult.
func NewBuiltinRegistry(primaryPrimes, secondaryPrimes *PrimeTableProvider) *Registry {
	r := NewRegistry()
	r.Register(&EdgesFlowMDIndex{})
	r.Register(&EdgesCallGraphMDIndex{})
	r.Register(&EdgesProximityMDIndex{})
	r.Register(&CallGraphMDIndex{})
	r.Register(&FlowGraphMDIndex{})
	r.Register(&CallGraphMDIndexRelaxed{})
	r.Register(&NameHash{})
	r.Register(&LoopCount{})
	r.Register(&CallSequence{})
	r.Register(&PrimeSignature{Primary: primaryPrimes, Secondary: secondaryPrimes})
	r.Register(&ByteHash{})
	r.Register(&StringRefs{})
	r.Register(&InstructionCount{})
	r.Register(&AddressSequence{})

	return r
}
