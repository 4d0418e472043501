// Package driver runs the cascading function-level and basic-block-level
// matching pipelines (spec.md §4.7 / SPEC_FULL.md §9) over a
// matchctx.Context: the canonical ambiguity-resolving bucket-join loop,
// reproduced here for reference (the actual ambiguity drill-down is
// realized by handing each step's residual unmatched candidates on to
// the next configured step, rather than an explicit recursive bucket
// split — see funcmatch.keyedMatch/bbmatch.keyedBBMatch for why that
// simplification preserves the uniqueness-gate semantics the spec
// cares about):
//
//	for each step S in configured function pipeline:
//	    build map m1: key -> set of primary candidates
//	    build map m2: key -> set of secondary candidates
//	    for each key k present in both m1 and m2:
//	        if |m1[k]| == 1 and |m2[k]| == 1:
//	            attempt add_fixed_point; on success run BB pipeline.
//	        else (ambiguous):
//	            let S' = next step in pipeline (if any); recurse with
//	                flow_graphs = {m1[k] and m2[k]} restricted to k,
//	                remaining_steps = pipeline tail beginning at S'
//	            push S' back onto the remaining_steps deque so the
//	            outer iteration can still see it.
//
// Every time a function fixed point is created — whether by a
// configured step or by call-sequence propagation — Driver.Run
// immediately runs the configured basic-block pipeline against it, then
// the unique-edge closure pass (bbmatch.UniqueEdgeClosure), then checks
// whether any of that function's matched basic blocks propagate a new
// "function_call_reference_match" fixed point via the call-sequence
// strategy (funcmatch.CallSequence, spec.md §4.7's "call sequence"
// propagation paragraph), looping until a full round produces nothing
// new. This is grounded on flow.Dinic's "iterate until no augmenting
// path is found" fixed-point loop — both are "repeat a cheap local step
// until a global quantity stops changing" shapes.
package driver
