package feature

import (
	"github.com/flowmatch/bindiff/dominator"
	"github.com/flowmatch/bindiff/graph"
)

// Slot enumerates the fixed set of feature kinds a Cache can hold. This
// replaces a type-erased deleter list with a fixed enum plus a
// tagged-union value per slot, per the design note in SPEC_FULL.md: the
// set of feature kinds is closed and known at compile time, so there is
// no need for a heterogeneous registry of destructors.
type Slot uint8

const (
	SlotMDTopDown Slot = iota
	SlotMDBottomUp
	SlotMDRelaxedTopDown
	SlotMDRelaxedBottomUp
	SlotProximityMD
	SlotBackEdges
	SlotByteHash
	SlotStringRefHash
	SlotPrimeProduct
	SlotInstructionCount
	numSlots
)

// Cache is a lazily-populated, single-writer feature cache attached to
// one flow graph. Each slot holds exactly one value, of the static type
// the slot's accessor expects; the accessor is the only code that
// knows that type, so no reflection or runtime type switch is needed
// outside this file.
type Cache struct {
	values [numSlots]interface{}
	filled [numSlots]bool
}

// NewCache returns an empty cache.
func NewCache() *Cache { return &Cache{} }

// Has reports whether slot has been populated.
func (c *Cache) Has(slot Slot) bool { return c.filled[slot] }

func (c *Cache) get(slot Slot) (interface{}, bool) { return c.values[slot], c.filled[slot] }

func (c *Cache) set(slot Slot, v interface{}) {
	c.values[slot] = v
	c.filled[slot] = true
}

// VertexMD returns the cached top-down or bottom-up vertex MD-index map
// for fg, computing it on first use.
func (c *Cache) VertexMD(fg *graph.FlowGraph, dir Direction) (map[graph.BlockID]float64, error) {
	slot := SlotMDTopDown
	if dir == Reverse {
		slot = SlotMDBottomUp
	}
	if v, ok := c.get(slot); ok {
		return v.(map[graph.BlockID]float64), nil
	}
	levels, err := Levels(fg, dir)
	if err != nil {
		return nil, err
	}
	md := FlowVertexMD(fg, levels)
	c.set(slot, md)

	return md, nil
}

// VertexMDRelaxed returns the cached BFS-level vertex MD-index map.
func (c *Cache) VertexMDRelaxed(fg *graph.FlowGraph, dir Direction) map[graph.BlockID]float64 {
	slot := SlotMDRelaxedTopDown
	if dir == Reverse {
		slot = SlotMDRelaxedBottomUp
	}
	if v, ok := c.get(slot); ok {
		return v.(map[graph.BlockID]float64)
	}
	levels := LevelsRelaxed(fg, dir)
	md := FlowVertexMD(fg, levels)
	c.set(slot, md)

	return md
}

// ProximityMD returns the cached 2-hop proximity MD-index map,
// computed against the top-down level assignment.
func (c *Cache) ProximityMD(fg *graph.FlowGraph) (map[graph.BlockID]float64, error) {
	if v, ok := c.get(SlotProximityMD); ok {
		return v.(map[graph.BlockID]float64), nil
	}
	levels, err := Levels(fg, Forward)
	if err != nil {
		return nil, err
	}
	md := FlowProximityMD(fg, levels)
	c.set(SlotProximityMD, md)

	return md, nil
}

// BackEdges returns the cached back-edge set (also the source of the
// loop-count feature: len(BackEdges(...))).
func (c *Cache) BackEdges(fg *graph.FlowGraph) ([]graph.Edge, error) {
	if v, ok := c.get(SlotBackEdges); ok {
		return v.([]graph.Edge), nil
	}
	be, err := dominator.BackEdges(fg)
	if err != nil {
		return nil, err
	}
	c.set(SlotBackEdges, be)

	return be, nil
}

// ByteHashes returns the cached per-block byte-hash map.
func (c *Cache) ByteHashes(fg *graph.FlowGraph) map[graph.BlockID]uint64 {
	if v, ok := c.get(SlotByteHash); ok {
		return v.(map[graph.BlockID]uint64)
	}
	out := make(map[graph.BlockID]uint64, len(fg.Blocks()))
	for _, bb := range fg.Blocks() {
		out[bb.Entry] = ByteHash(fg.Function(), bb)
	}
	c.set(SlotByteHash, out)

	return out
}

// PrimeProducts returns the cached per-block prime-signature product
// map, computed against the given program-wide prime table.
func (c *Cache) PrimeProducts(fg *graph.FlowGraph, pt *PrimeTable) map[graph.BlockID]int64 {
	if v, ok := c.get(SlotPrimeProduct); ok {
		return v.(map[graph.BlockID]int64)
	}
	out := make(map[graph.BlockID]int64, len(fg.Blocks()))
	for _, bb := range fg.Blocks() {
		out[bb.Entry] = pt.Product(BlockMnemonics(fg.Function(), bb))
	}
	c.set(SlotPrimeProduct, out)

	return out
}

// InstructionCount returns the cached total instruction count.
func (c *Cache) InstructionCount(fg *graph.FlowGraph) int {
	if v, ok := c.get(SlotInstructionCount); ok {
		return v.(int)
	}
	n := InstructionCount(fg)
	c.set(SlotInstructionCount, n)

	return n
}
