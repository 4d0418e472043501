package exchange

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/flowmatch/bindiff/graph"
)

// Load decodes an exchange document from r, reversing every
// default-value-elision and address-elision rule Save/toWireFunction
// applied (spec.md §6), and rebuilds a *graph.CallGraph with one
// FlowGraph per function. The returned Header carries the ephemeral,
// match-irrelevant fields (executable id, original name, timestamp)
// P7 allows a round trip to ignore.
func Load(r io.Reader) (Header, *graph.CallGraph, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return Header{}, nil, fmt.Errorf("exchange: decode: %w", err)
	}

	if len(f.Functions) == 0 {
		return f.Header, nil, ErrNoFunctions
	}

	arena := graph.LoadArena(f.Mnemonics, fromWireExpressions(f.Expressions), fromWireOperands(f.Operands))

	cg := graph.NewCallGraph()
	cg.SetArena(arena)
	cg.SetLibraries(fromWireLibraries(f.Libraries))
	cg.SetModules(fromWireModules(f.Modules))

	for _, wfn := range f.Functions {
		fn, err := fromWireFunction(wfn)
		if err != nil {
			return Header{}, nil, fmt.Errorf("exchange: function %x: %w", wfn.Entry, err)
		}
		if err := cg.AddFunction(fn); err != nil {
			return Header{}, nil, fmt.Errorf("exchange: AddFunction(%x): %w", wfn.Entry, err)
		}
	}

	for _, wfn := range f.Functions {
		fn, _ := cg.FunctionByAddress(wfn.Entry)
		flow, err := buildFlowGraph(fn, wfn)
		if err != nil {
			return Header{}, nil, fmt.Errorf("exchange: function %x: %w", wfn.Entry, err)
		}
		fn.Flow = flow
	}

	for _, ce := range f.CallEdges {
		if err := cg.AddCallEdge(ce.From, ce.To, ce.Site); err != nil {
			return Header{}, nil, fmt.Errorf("exchange: call edge %x->%x: %w", ce.From, ce.To, err)
		}
	}

	return f.Header, cg, nil
}

func fromWireLibraries(libs []Library) []graph.Library {
	if len(libs) == 0 {
		return nil
	}
	out := make([]graph.Library, len(libs))
	for i, l := range libs {
		out[i] = graph.Library{Name: l.Name, IsStatic: l.IsStatic}
	}

	return out
}

func fromWireModules(mods []Module) []graph.Module {
	if len(mods) == 0 {
		return nil
	}
	out := make([]graph.Module, len(mods))
	for i, m := range mods {
		out[i] = graph.Module{Name: m.Name}
	}

	return out
}

// fromWireExpressions reverses toWireExpressions, assigning each
// expression the 1-based graph.ExprID its position in the table
// implies (Arena.Exprs()/LoadArena's convention).
func fromWireExpressions(exprs []Expression) []graph.Expression {
	if len(exprs) == 0 {
		return nil
	}
	out := make([]graph.Expression, len(exprs))
	for i, e := range exprs {
		out[i] = graph.Expression{
			ID:       graph.ExprID(i + 1),
			Kind:     wireToKind[e.Kind],
			Position: e.Position,
			ImmInt:   e.ImmInt,
			ImmFloat: e.ImmFloat,
			Symbol:   e.Symbol,
			Parent:   graph.ExprID(e.Parent),
			IsReloc:  e.IsReloc,
		}
	}

	return out
}

func fromWireOperands(ops []Operand) []graph.Operand {
	if len(ops) == 0 {
		return nil
	}
	out := make([]graph.Operand, len(ops))
	for i, op := range ops {
		exprs := make([]graph.ExprID, len(op.Exprs))
		for j, id := range op.Exprs {
			exprs[j] = graph.ExprID(id)
		}
		out[i] = graph.Operand{Exprs: exprs}
	}

	return out
}

// fromWireFunction reverses toWireFunction's instruction encoding,
// including the address-elision rule: an omitted address is
// reconstructed from the previous instruction's address plus size,
// which is only legal (per Save's own elision condition) when the
// previous instruction carries FlagFlow.
func fromWireFunction(wfn Function) (*graph.Function, error) {
	fn := &graph.Function{
		Entry:        wfn.Entry,
		Name:         wfn.Name,
		Demangled:    wfn.Demangled,
		Module:       wfn.Module,
		LibraryIndex: wfn.LibraryIndex,
		Type:         wireToFuncType[wfn.Type],
	}

	fn.Instructions = make([]graph.Instruction, len(wfn.Instructions))
	var prevAddr uint64
	var prevSize uint64
	var prevFlags graph.InstrFlag
	for i, wi := range wfn.Instructions {
		var addr uint64
		switch {
		case wi.Address != nil:
			addr = *wi.Address
		case i == 0:
			return nil, fmt.Errorf("%w: instruction 0 has no address", ErrInvalidInput)
		case !prevFlags.Has(graph.FlagFlow):
			return nil, fmt.Errorf("%w: instruction %d elides address without a flowing predecessor", ErrInvalidInput, i)
		default:
			addr = prevAddr + prevSize
		}

		in := graph.Instruction{
			Address:     addr,
			Bytes:       wi.Bytes,
			Mnemonic:    wi.Mnemonic,
			Flags:       graph.InstrFlag(wi.Flags),
			CallTargets: wi.CallTargets,
		}
		if len(wi.Operands) > 0 {
			in.Operands = make([]graph.OperandID, len(wi.Operands))
			for j, id := range wi.Operands {
				in.Operands[j] = graph.OperandID(id)
			}
		}
		fn.Instructions[i] = in

		prevAddr, prevSize, prevFlags = addr, in.Size(), in.Flags
	}

	return fn, nil
}

// buildFlowGraph reconstructs fn's FlowGraph from wfn's basic-block and
// edge tables, reversing the End-elision rule (a range with no End
// means Start+1) and the entry-block/entry-address index mapping.
func buildFlowGraph(fn *graph.Function, wfn Function) (*graph.FlowGraph, error) {
	if len(wfn.BasicBlocks) == 0 {
		return nil, nil
	}

	blocks := make([]*graph.BasicBlock, len(wfn.BasicBlocks))
	for i, wbb := range wfn.BasicBlocks {
		ranges := make([]graph.InstrRange, len(wbb.Ranges))
		for j, wr := range wbb.Ranges {
			end := wr.Start + 1
			if wr.End != nil {
				end = *wr.End
			}
			ranges[j] = graph.InstrRange{Start: wr.Start, End: end}
		}
		bb, err := graph.NewBasicBlock(fn, ranges...)
		if err != nil {
			return nil, fmt.Errorf("basic block %d: %w", i, err)
		}
		blocks[i] = bb
	}

	if wfn.EntryBlock < 0 || wfn.EntryBlock >= len(blocks) {
		return nil, fmt.Errorf("%w: entry block index %d out of range", ErrInvalidInput, wfn.EntryBlock)
	}
	entry := blocks[wfn.EntryBlock].Entry

	edges := make([]graph.Edge, len(wfn.Edges))
	for i, we := range wfn.Edges {
		if we.Source < 0 || we.Source >= len(blocks) || we.Target < 0 || we.Target >= len(blocks) {
			return nil, fmt.Errorf("%w: edge %d references out-of-range block index", ErrInvalidInput, i)
		}
		edges[i] = graph.Edge{
			Source:     blocks[we.Source].Entry,
			Target:     blocks[we.Target].Entry,
			Type:       wireToEdgeType[we.Type],
			IsBackEdge: we.IsBackEdge,
		}
	}

	return graph.NewFlowGraph(fn, entry, blocks, edges)
}
