// Package fixedpoint is the fixed-point store: the set of
// function-level and basic-block-level match pairs the driver builds
// up during a run. It enforces the uniqueness invariants of spec.md
// §4.3 (a primary/secondary function or block participates in at most
// one fixed point) at insertion time, and supports confidence
// recomputation from a pipeline's per-step weights.
package fixedpoint
