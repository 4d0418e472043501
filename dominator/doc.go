// Package dominator computes dominator trees over a function's flow
// graph using the Lengauer-Tarjan algorithm (semidominators plus a
// path-compressing forest), and derives the back-edge set from the
// resulting tree: an edge (u->v) is a back-edge iff v dominates u, or
// u == v.
//
// The flow graph itself carries no dominance information (package graph
// is a pure data structure); this package is the outside algorithm that
// operates on it, mirroring how the teacher's core.Graph carries no
// cycle-detection logic of its own.
package dominator
