package driver

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/flowmatch/bindiff/bbmatch"
	"github.com/flowmatch/bindiff/config"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/funcmatch"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// Driver runs the configured function- and basic-block-level matcher
// pipelines to exhaustion, handling call-sequence propagation and the
// unique-edge closure pass, per spec.md §4.7.
type Driver struct {
	FuncRegistry *funcmatch.Registry
	BBRegistry   *bbmatch.Registry
}

// New wraps explicit function- and basic-block-level registries (custom
// matchers included) in a Driver.
func New(funcRegistry *funcmatch.Registry, bbRegistry *bbmatch.Registry) *Driver {
	return &Driver{FuncRegistry: funcRegistry, BBRegistry: bbRegistry}
}

// NewDefault builds a Driver over the fourteen-plus-fourteen built-in
// strategies (funcmatch.NewBuiltinRegistry / bbmatch.NewBuiltinRegistry),
// sharing one program-wide prime table per side between the two levels
// the way PrimeSignature/Prime are documented to (SPEC_FULL.md §7/§8).
func NewDefault(primary, secondary *graph.CallGraph) *Driver {
	primaryPrimes := funcmatch.NewPrimeTableProvider(primary)
	secondaryPrimes := funcmatch.NewPrimeTableProvider(secondary)

	funcRegistry := funcmatch.NewBuiltinRegistry(primaryPrimes, secondaryPrimes)
	bbRegistry := bbmatch.NewBuiltinRegistry(
		&bbmatch.PrimeTables{Table: primaryPrimes.Table},
		&bbmatch.PrimeTables{Table: secondaryPrimes.Table},
	)

	return New(funcRegistry, bbRegistry)
}

// Run executes cfg's function-level pipeline in order. Each step is
// handed the functions still unmatched on both sides; a step's own
// matcher (funcmatch.keyedMatch under the hood) enforces the
// unique-key-on-both-sides gate, so candidates it cannot resolve simply
// remain unmatched and fall through to the next configured step — this
// is what realizes the spec's ambiguity drill-down without an explicit
// recursive bucket split (see driver/doc.go). Every function fixed
// point created, whether by a configured step or by call-sequence
// propagation, immediately runs the basic-block pipeline and the
// unique-edge closure pass before the outer loop continues.
//
// Run never fails on a per-step miss (spec.md §7: "a step that finds
// nothing simply returns false and the driver continues"); it returns
// an error only for ErrConfig (empty pipeline) or a genuine invariant
// violation surfaced by a matcher or the fixed-point store.
func (d *Driver) Run(ctx context.Context, mc *matchctx.Context, cfg *config.PipelineConfig) (*Result, error) {
	if len(cfg.FunctionSteps()) == 0 && len(cfg.BasicBlockSteps()) == 0 {
		return nil, &Status{Kind: KindConfig, Message: "pipeline has no function or basic-block steps configured", Err: ErrConfig}
	}

	res := &Result{}
	settled := make(map[fixedpoint.ID]bool)

	for _, stepName := range cfg.FunctionSteps() {
		if d.cancelled(ctx, mc) {
			res.Cancelled = true
			res.FixedPoints = mc.Store.All()

			return res, nil
		}

		matcher, ok := d.FuncRegistry.Get(stepName)
		if !ok {
			mc.Logger.Debug("driver: skipping unknown function step", "step", stepName)

			continue
		}

		candidatesP := unmatchedFunctions(mc.Primary, mc.Store, true)
		candidatesS := unmatchedFunctions(mc.Secondary, mc.Store, false)
		mc.Logger.Debug("driver: running function step", "step", stepName,
			"candidates_primary", len(candidatesP), "candidates_secondary", len(candidatesS))

		if _, err := matcher.FindFixedPoints(mc, nil, candidatesP, candidatesS); err != nil {
			return res, fmt.Errorf("driver: step %s: %w", stepName, err)
		}

		if err := d.settleNewFixedPoints(ctx, mc, cfg, settled); err != nil {
			return res, err
		}
	}

	for _, fp := range mc.Store.All() {
		recomputeConfidence(mc, cfg, fp)
	}
	res.FixedPoints = mc.Store.All()

	return res, nil
}

// recomputeConfidence resolves fp's primary/secondary functions and
// delegates to fixedpoint.Function.RecomputeConfidence's length
// weighting; either side missing (should not happen for a fixed point
// this store produced itself) just drops that side's length
// contribution rather than failing the run.
func recomputeConfidence(mc *matchctx.Context, cfg *config.PipelineConfig, fp *fixedpoint.Function) {
	primaryFn, _ := mc.Primary.FunctionByAddress(fp.PrimaryAddr)
	secondaryFn, _ := mc.Secondary.FunctionByAddress(fp.SecondaryAddr)
	fp.RecomputeConfidence(cfg, primaryFn, secondaryFn)
}

// settleNewFixedPoints drives every not-yet-processed function fixed
// point through the basic-block pipeline, the unique-edge closure pass,
// and call-sequence propagation, looping until a full round produces no
// further unprocessed fixed points — propagation from round N's fixed
// points can itself create round N+1's.
func (d *Driver) settleNewFixedPoints(ctx context.Context, mc *matchctx.Context, cfg *config.PipelineConfig, settled map[fixedpoint.ID]bool) error {
	for {
		var fresh []*fixedpoint.Function
		for _, fp := range mc.Store.All() {
			if !settled[fp.ID] {
				fresh = append(fresh, fp)
			}
		}
		if len(fresh) == 0 {
			return nil
		}
		for _, fp := range fresh {
			settled[fp.ID] = true
		}

		if d.cancelled(ctx, mc) {
			return nil
		}

		if err := d.runBBPipelinesFor(ctx, mc, cfg, fresh, cfg.ParallelBB()); err != nil {
			return err
		}
		for _, fp := range fresh {
			recomputeConfidence(mc, cfg, fp)
		}

		if err := d.propagateCallSequence(mc, fresh); err != nil {
			return err
		}
	}
}

// propagateCallSequence implements spec.md §4.7's "call sequence"
// propagation paragraph: for each freshly matched function fixed point,
// pair its still-unmatched callees against the secondary's still-
// unmatched callees by call order (funcmatch.CallSequence handles the
// "same number of calls, same order" gate internally).
func (d *Driver) propagateCallSequence(mc *matchctx.Context, fresh []*fixedpoint.Function) error {
	matcher, ok := d.FuncRegistry.Get("call_sequence")
	if !ok {
		return nil
	}

	for _, fp := range fresh {
		candidatesP := unmatchedFunctions(mc.Primary, mc.Store, true)
		candidatesS := unmatchedFunctions(mc.Secondary, mc.Store, false)
		if _, err := matcher.FindFixedPoints(mc, fp, candidatesP, candidatesS); err != nil {
			return fmt.Errorf("driver: call sequence propagation from %x/%x: %w", fp.PrimaryAddr, fp.SecondaryAddr, err)
		}
	}

	return nil
}

// RunParallelBB is the additional, opt-in entry point of SPEC_FULL.md
// §9: it runs the basic-block pipeline for every function fixed point
// currently in mc.Store, fanning them out across an errgroup.Group
// since each one touches a disjoint function-entry-keyed feature-cache
// slot and a disjoint subtree of fixed-point-store basic blocks (its
// own parent ID). Callers that want parallel BB matching without
// config.WithParallelBB() threaded through Run can invoke this directly
// after a function-level-only Run; Run itself calls the same fan-out
// helper internally when cfg.ParallelBB() is set.
func (d *Driver) RunParallelBB(ctx context.Context, mc *matchctx.Context, cfg *config.PipelineConfig) error {
	fps := mc.Store.All()
	if err := d.runBBPipelinesFor(ctx, mc, cfg, fps, true); err != nil {
		return err
	}
	for _, fp := range fps {
		recomputeConfidence(mc, cfg, fp)
	}

	return nil
}

func (d *Driver) runBBPipelinesFor(ctx context.Context, mc *matchctx.Context, cfg *config.PipelineConfig, fps []*fixedpoint.Function, parallel bool) error {
	if !parallel {
		for _, fp := range fps {
			if err := d.runBBPipeline(mc, cfg, fp); err != nil {
				return err
			}
		}

		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, fp := range fps {
		fp := fp
		g.Go(func() error {
			if d.cancelled(gctx, mc) {
				return nil
			}

			return d.runBBPipeline(mc, cfg, fp)
		})
	}

	return g.Wait()
}

// runBBPipeline runs cfg's basic-block pipeline against one function
// fixed point's unmatched blocks, then the unique-edge closure pass.
func (d *Driver) runBBPipeline(mc *matchctx.Context, cfg *config.PipelineConfig, fp *fixedpoint.Function) error {
	primaryFn, ok := mc.Primary.FunctionByAddress(fp.PrimaryAddr)
	if !ok || primaryFn.Flow == nil {
		return nil
	}
	secondaryFn, ok := mc.Secondary.FunctionByAddress(fp.SecondaryAddr)
	if !ok || secondaryFn.Flow == nil {
		return nil
	}

	for _, stepName := range cfg.BasicBlockSteps() {
		matcher, ok := d.BBRegistry.Get(stepName)
		if !ok {
			mc.Logger.Debug("driver: skipping unknown basic-block step", "step", stepName)

			continue
		}

		candidatesP := unmatchedBlocks(primaryFn, fp, true)
		candidatesS := unmatchedBlocks(secondaryFn, fp, false)
		if len(candidatesP) == 0 || len(candidatesS) == 0 {
			continue
		}

		if _, err := matcher.FindFixedPoints(mc, fp, primaryFn, secondaryFn, candidatesP, candidatesS); err != nil {
			return fmt.Errorf("driver: bb step %s (function %x/%x): %w", stepName, fp.PrimaryAddr, fp.SecondaryAddr, err)
		}
	}

	if _, err := bbmatch.UniqueEdgeClosure(mc, fp, primaryFn, secondaryFn); err != nil {
		return fmt.Errorf("driver: unique edge closure (function %x/%x): %w", fp.PrimaryAddr, fp.SecondaryAddr, err)
	}

	return nil
}

func (d *Driver) cancelled(ctx context.Context, mc *matchctx.Context) bool {
	if mc.ShouldCancel() {
		return true
	}
	if ctx == nil {
		return false
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// unmatchedFunctions returns cg's functions not yet owning a fixed point
// on the given side, in cg.Functions()'s address-ascending order.
func unmatchedFunctions(cg *graph.CallGraph, store *fixedpoint.Store, primarySide bool) []*graph.Function {
	var out []*graph.Function
	for _, fn := range cg.Functions() {
		var matched bool
		if primarySide {
			_, matched = store.ByPrimary(fn.Entry)
		} else {
			_, matched = store.BySecondary(fn.Entry)
		}
		if !matched {
			out = append(out, fn)
		}
	}

	return out
}

// unmatchedBlocks returns fn's basic blocks not yet used by any
// basic-block fixed point inside fp, on the given side.
func unmatchedBlocks(fn *graph.Function, fp *fixedpoint.Function, primarySide bool) []*graph.BasicBlock {
	used := make(map[uint64]bool, len(fp.BasicBlocks))
	for _, bb := range fp.BasicBlocks {
		if primarySide {
			used[bb.PrimaryBlock] = true
		} else {
			used[bb.SecondaryBlock] = true
		}
	}

	var out []*graph.BasicBlock
	for _, bb := range fn.Flow.Blocks() {
		if !used[uint64(bb.Entry)] {
			out = append(out, bb)
		}
	}

	return out
}
