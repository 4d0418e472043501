// Package feature computes and caches the structural fingerprints the
// matcher pipelines key on: MD-index (top-down, bottom-up, relaxed,
// proximity), prime signatures, byte/string/name hashes, loop counts
// and instruction counts. Every feature is computed lazily on first use
// per graph and stored in a Cache, never recomputed, mirroring the
// teacher's core package holding everything on a struct rather than in
// a process-wide table.
package feature
