package bbmatch

import (
	"sort"
	"sync"

	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// BBMatcher is one basic-block-level matching strategy, invoked once
// per function fixed point against the unmatched blocks on each side
// of that function pair.
type BBMatcher interface {
	Name() string
	FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
		primaryFn, secondaryFn *graph.Function, candidatesP, candidatesS []*graph.BasicBlock) (bool, error)
}

// Registry holds built-in and custom basic-block matchers by name.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]BBMatcher
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{byName: make(map[string]BBMatcher)} }

// Register adds m, keyed by m.Name().
func (r *Registry) Register(m BBMatcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[m.Name()] = m
}

// Get returns the matcher registered under name.
func (r *Registry) Get(name string) (BBMatcher, bool) {
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
// built-in strategies of spec.md §4.6.
func NewBuiltinRegistry(primaryPrimes, secondaryPrimes *PrimeTables) *Registry {
	r := NewRegistry()
	r.Register(&EdgesMDIndex{})
	r.Register(&EdgesPrimeProduct{Primary: primaryPrimes, Secondary: secondaryPrimes})
	r.Register(&EdgesDominated{})
	r.Register(&MDIndex{})
	r.Register(&ByteHash{})
	r.Register(&Prime{Primary: primaryPrimes, Secondary: secondaryPrimes})
	r.Register(&CallRefs{})
	r.Register(&StringRefs{})
	r.Register(&MDIndexRelaxed{})
	r.Register(&LoopEntryNodes{})
	r.Register(&SelfLoopNodes{})
	r.Register(&EntryExitNodes{})
	r.Register(&InstructionCount{})
	r.Register(&JumpSequence{})

	return r
}
