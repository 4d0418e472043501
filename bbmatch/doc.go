// Package bbmatch holds the basic-block-level matching strategies of
// spec.md §4.6: invoked once per function fixed point, each takes the
// unmatched blocks on both sides of that function pair and produces
// basic-block fixed points. Same one-capability/fourteen-strategies
// shape as funcmatch, plus the post-pipeline unique-edge-closure pass.
package bbmatch
