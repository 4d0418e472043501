package fixedpoint

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/flowmatch/bindiff/config"
	"github.com/flowmatch/bindiff/graph"
)

// Store holds the fixed-point set built up over one matching run. It
// enforces spec.md §4.3's uniqueness invariants at Add time (a primary
// or secondary function/block participates in at most one fixed
// point), trusting them afterward rather than re-validating on every
// read — the same trust boundary internal/lowgraph.Graph applies to its
// own adjacency once an edge has been added.
type Store struct {
	mu sync.RWMutex

	byID        map[ID]*Function
	byPrimary   map[uint64]ID
	bySecondary map[uint64]ID

	bbPrimary   map[ID]map[uint64]bool // enclosing function ID -> primary blocks used
	bbSecondary map[ID]map[uint64]bool
}

// NewStore returns an empty fixed-point store.
func NewStore() *Store {
	return &Store{
		byID:        make(map[ID]*Function),
		byPrimary:   make(map[uint64]ID),
		bySecondary: make(map[uint64]ID),
		bbPrimary:   make(map[ID]map[uint64]bool),
		bbSecondary: make(map[ID]map[uint64]bool),
	}
}

// Add inserts a function-level fixed point. Returns (nil, false, nil) if
// either function already participates in a fixed point — no error,
// mirroring the driver's "a step that finds nothing simply returns
// false" policy (spec.md §7): this is an expected outcome, not a fault.
func (s *Store) Add(primary, secondary *graph.Function, step string) (*Function, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, used := s.byPrimary[primary.Entry]; used {
		return nil, false, nil
	}
	if _, used := s.bySecondary[secondary.Entry]; used {
		return nil, false, nil
	}

	fp := &Function{
		ID:            uuid.New(),
		PrimaryAddr:   primary.Entry,
		SecondaryAddr: secondary.Entry,
		StepName:      step,
	}
	s.byID[fp.ID] = fp
	s.byPrimary[primary.Entry] = fp.ID
	s.bySecondary[secondary.Entry] = fp.ID
	s.bbPrimary[fp.ID] = map[uint64]bool{}
	s.bbSecondary[fp.ID] = map[uint64]bool{}

	return fp, true, nil
}

// AddBasicBlock inserts a basic-block fixed point inside the function
// fixed point identified by parentID. Returns (nil, false, nil) if
// either block is already used within that parent.
func (s *Store) AddBasicBlock(parentID ID, primary, secondary graph.BlockID, step string) (*BasicBlock, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.byID[parentID]
	if !ok {
		return nil, false, fmt.Errorf("fixedpoint: AddBasicBlock: %w", ErrWrongParent)
	}

	pUsed := s.bbPrimary[parentID]
	sUsed := s.bbSecondary[parentID]
	if pUsed[uint64(primary)] || sUsed[uint64(secondary)] {
		return nil, false, nil
	}

	bb := &BasicBlock{
		ParentID:       parentID,
		PrimaryBlock:   uint64(primary),
		SecondaryBlock: uint64(secondary),
		StepName:       step,
	}
	parent.BasicBlocks = append(parent.BasicBlocks, bb)
	pUsed[uint64(primary)] = true
	sUsed[uint64(secondary)] = true

	return bb, true, nil
}

// ByPrimary returns the fixed point owning the function at primaryAddr.
func (s *Store) ByPrimary(primaryAddr uint64) (*Function, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPrimary[primaryAddr]
	if !ok {
		return nil, false
	}

	return s.byID[id], true
}

// BySecondary returns the fixed point owning the function at
// secondaryAddr.
func (s *Store) BySecondary(secondaryAddr uint64) (*Function, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bySecondary[secondaryAddr]
	if !ok {
		return nil, false
	}

	return s.byID[id], true
}

// Delete removes the function fixed points identified by ids along
// with all their contained basic-block fixed points, maintaining the
// uniqueness indices. Returns ErrNotFound (wrapped, naming the first
// unknown id encountered) if any id doesn't exist; no partial deletion
// occurs in that case.
func (s *Store) Delete(ids ...ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.byID[id]; !ok {
			return fmt.Errorf("fixedpoint: Delete(%s): %w", id, ErrNotFound)
		}
	}

	for _, id := range ids {
		fp := s.byID[id]
		delete(s.byID, id)
		delete(s.byPrimary, fp.PrimaryAddr)
		delete(s.bySecondary, fp.SecondaryAddr)
		delete(s.bbPrimary, id)
		delete(s.bbSecondary, id)
	}

	return nil
}

// All returns every function fixed point, sorted by primary address.
func (s *Store) All() []*Function {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Function, 0, len(s.byID))
	for _, fp := range s.byID {
		out = append(out, fp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PrimaryAddr < out[j].PrimaryAddr })

	return out
}

// RecomputeConfidence sets fp.Confidence to a length-weighted
// combination of its basic-block fixed points' step confidences, read
// from cfg, per spec.md §4.3/§4.7 — each matched block pair's step
// confidence is weighted by its instruction count (summed across both
// sides), so a one-instruction stub block contributes less than a
// large matched body. primaryFn/secondaryFn resolve each block pair's
// length via their flow graphs; either may be nil (or lack a flow
// graph), in which case that side simply contributes no length.
// A fixed point with no basic blocks keeps its step's own configured
// confidence (or 0 if unconfigured).
func (fp *Function) RecomputeConfidence(cfg *config.PipelineConfig, primaryFn, secondaryFn *graph.Function) {
	if len(fp.BasicBlocks) == 0 {
		c, _ := cfg.StepConfidence(fp.StepName)
		fp.Confidence = c

		return
	}

	var weightedSum, totalWeight float64
	for _, bb := range fp.BasicBlocks {
		c, _ := cfg.StepConfidence(bb.StepName)
		weightedSum += c * blockLength(primaryFn, secondaryFn, bb)
		totalWeight += blockLength(primaryFn, secondaryFn, bb)
	}
	if totalWeight == 0 {
		var sum float64
		for _, bb := range fp.BasicBlocks {
			c, _ := cfg.StepConfidence(bb.StepName)
			sum += c
		}
		fp.Confidence = sum / float64(len(fp.BasicBlocks))

		return
	}
	fp.Confidence = weightedSum / totalWeight
}

// blockLength returns the combined instruction count of a matched basic
// block pair, used as RecomputeConfidence's weight.
func blockLength(primaryFn, secondaryFn *graph.Function, bb *BasicBlock) float64 {
	var n float64
	if primaryFn != nil && primaryFn.Flow != nil {
		if b, ok := primaryFn.Flow.BlockByAddress(bb.PrimaryBlock); ok {
			n += float64(b.InstructionCount())
		}
	}
	if secondaryFn != nil && secondaryFn.Flow != nil {
		if b, ok := secondaryFn.Flow.BlockByAddress(bb.SecondaryBlock); ok {
			n += float64(b.InstructionCount())
		}
	}

	return n
}
