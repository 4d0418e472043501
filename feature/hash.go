package feature

import (
	"hash/fnv"
	"sort"

	"github.com/flowmatch/bindiff/graph"
)

// SDBMHash computes the SDBM string hash of s, used for the name-hash
// feature (spec.md §4.2: "Name hash (SDBM)").
func SDBMHash(s string) uint64 {
	var h uint64
	for i := 0; i < len(s); i++ {
		h = uint64(s[i]) + (h << 6) + (h << 16) - h
	}

	return h
}

// NameHash returns the SDBM hash of fn's demangled-or-mangled name, or
// (0, false) if fn has no real name (fn.HasRealName is false), so
// auto-generated and empty names never produce a key.
func NameHash(fn *graph.Function) (uint64, bool) {
	if !fn.HasRealName() {
		return 0, false
	}

	return SDBMHash(fn.DisplayName()), true
}

// ByteHash returns an FNV-1a hash of the concatenated raw bytes of
// every instruction in bb, in address order.
func ByteHash(fn *graph.Function, bb *graph.BasicBlock) uint64 {
	h := fnv.New64a()
	for _, in := range bb.Instructions(fn) {
		_, _ = h.Write(in.Bytes)
	}

	return h.Sum64()
}

// StringRefHash combines the hashes of the string-table entries
// referenced by instructions in bb, order-independent (sorted before
// combining) so that equivalent but differently-ordered references
// produce the same hash.
func StringRefHash(refs []string) uint64 {
	sorted := append([]string(nil), refs...)
	sort.Strings(sorted)

	h := fnv.New64a()
	for _, s := range sorted {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}

	return h.Sum64()
}

// InstructionCount sums the instruction count over every block fg owns
// (spec.md §4.2: "Instruction count | Sum over blocks").
func InstructionCount(fg *graph.FlowGraph) int {
	n := 0
	for _, bb := range fg.Blocks() {
		n += bb.InstructionCount()
	}

	return n
}

// LoopCount is the number of back edges in fg (spec.md §4.2: "Loop
// count | |back_edges|").
func LoopCount(backEdges []graph.Edge) int { return len(backEdges) }
