package exchange

import "github.com/flowmatch/bindiff/graph"

// kindToWire/wireToKind translate between graph.ExprKind's internal
// iota ordering and the wire encoding spec.md §6 implies by naming
// "expression-type immediate-int" as the elided default — the two
// orderings are independent on purpose, so reordering graph.ExprKind's
// declaration never silently changes what a previously written document
// decodes to.
var kindToWire = map[graph.ExprKind]int{
	graph.ExprImmediateInt:   0,
	graph.ExprSymbol:         1,
	graph.ExprImmediateFloat: 2,
	graph.ExprOperator:       3,
	graph.ExprRegister:       4,
	graph.ExprSizePrefix:     5,
	graph.ExprDereference:    6,
}

var wireToKind = func() map[int]graph.ExprKind {
	out := make(map[int]graph.ExprKind, len(kindToWire))
	for k, v := range kindToWire {
		out[v] = k
	}

	return out
}()

// edgeTypeToWire/wireToEdgeType do the same for graph.EdgeType, where
// EdgeUnconditional already is iota 0 — the identity map is kept
// explicit rather than skipped so both enums are translated the same
// way in this package, and so a future reordering of graph.EdgeType is
// caught here instead of silently changing wire semantics.
var edgeTypeToWire = map[graph.EdgeType]int{
	graph.EdgeUnconditional: 0,
	graph.EdgeTrue:          1,
	graph.EdgeFalse:         2,
	graph.EdgeSwitch:        3,
}

var wireToEdgeType = func() map[int]graph.EdgeType {
	out := make(map[int]graph.EdgeType, len(edgeTypeToWire))
	for k, v := range edgeTypeToWire {
		out[v] = k
	}

	return out
}()

// funcTypeToWire/wireToFuncType do the same for graph.FunctionType,
// where FuncStandard is already iota 0.
var funcTypeToWire = map[graph.FunctionType]int{
	graph.FuncStandard: 0,
	graph.FuncLibrary:  1,
	graph.FuncImported: 2,
	graph.FuncThunk:    3,
	graph.FuncInvalid:  4,
	graph.FuncNone:     5,
}

var wireToFuncType = func() map[int]graph.FunctionType {
	out := make(map[int]graph.FunctionType, len(funcTypeToWire))
	for k, v := range funcTypeToWire {
		out[v] = k
	}

	return out
}()
