// Package graph is your in-memory model of two disassembled programs: the
// instructions, basic blocks, and functions that make up a flow graph, and
// the functions-as-vertices call graph that ties them together.
//
// Everything here is built once by a loader (package exchange) and is
// read-only for the rest of a matching run — the matching driver and its
// matchers only ever read a *FlowGraph or *CallGraph, never mutate one;
// fixed points live in their own store (package fixedpoint).
//
// Under the hood:
//
//	Arena       — per-load interning of mnemonics, expressions, operands;
//	              replaces the process-wide caches of the reference tool
//	              with a value whose lifetime matches the graph model's.
//	Instruction / Expression / Operand — the instruction-level model.
//	BasicBlock / FlowGraph             — one function's control-flow graph.
//	Function / CallGraph               — functions as vertices, call sites
//	                                      as edges.
//
// FlowGraph and CallGraph are both backed by the same internal multigraph
// engine (internal/lowgraph) that the wider lvlath family uses for its
// core.Graph — vertices are hex-encoded addresses. Flow-graph edges carry a
// Metadata map holding the edge type and back-edge flag; the call-site
// address and circular/duplicate flags live on the CallGraph's own
// CallEdge values. A generic graph engine has no business knowing about
// either.
package graph
