package exchange

import (
	"encoding/json"
	"io"

	"github.com/flowmatch/bindiff/graph"
)

// Save writes cg (and every function's flow graph) as an exchange
// document to w, applying spec.md §6's default-value-elision and
// address-elision rules. hdr carries the program-identifying metadata
// the graph model itself doesn't hold (executable id, architecture).
func Save(w io.Writer, hdr Header, cg *graph.CallGraph) error {
	f := File{
		Header:    hdr,
		Libraries: toWireLibraries(cg.Libraries()),
		Modules:   toWireModules(cg.Modules()),
	}

	if arena := cg.Arena(); arena != nil {
		f.Mnemonics = arena.Mnemonics()
		f.Expressions = toWireExpressions(arena.Exprs())
		f.Operands = toWireOperands(arena.Operands())
	}

	for _, fn := range cg.Functions() {
		f.Functions = append(f.Functions, toWireFunction(fn))
	}

	for _, ce := range cg.CallEdges() {
		f.CallEdges = append(f.CallEdges, CallEdge{From: ce.From, To: ce.To, Site: ce.Site})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(f)
}

func toWireLibraries(libs []graph.Library) []Library {
	if len(libs) == 0 {
		return nil
	}
	out := make([]Library, len(libs))
	for i, l := range libs {
		out[i] = Library{Name: l.Name, IsStatic: l.IsStatic}
	}

	return out
}

func toWireModules(mods []graph.Module) []Module {
	if len(mods) == 0 {
		return nil
	}
	out := make([]Module, len(mods))
	for i, m := range mods {
		out[i] = Module{Name: m.Name}
	}

	return out
}

func toWireExpressions(exprs []graph.Expression) []Expression {
	if len(exprs) == 0 {
		return nil
	}
	out := make([]Expression, len(exprs))
	for i, e := range exprs {
		out[i] = Expression{
			Kind:     kindToWire[e.Kind],
			Position: e.Position,
			ImmInt:   e.ImmInt,
			ImmFloat: e.ImmFloat,
			Symbol:   e.Symbol,
			Parent:   int(e.Parent),
			IsReloc:  e.IsReloc,
		}
	}

	return out
}

func toWireOperands(ops []graph.Operand) []Operand {
	if len(ops) == 0 {
		return nil
	}
	out := make([]Operand, len(ops))
	for i, op := range ops {
		exprs := make([]int, len(op.Exprs))
		for j, id := range op.Exprs {
			exprs[j] = int(id)
		}
		out[i] = Operand{Exprs: exprs}
	}

	return out
}

// toWireFunction encodes fn, applying the instruction address-elision
// rule across fn.Instructions in order (spec.md §6): an address is
// omitted exactly when the previous instruction exists, carries
// FlagFlow, its address plus size equals the current address, and the
// current instruction is not fn's entry point.
func toWireFunction(fn *graph.Function) Function {
	out := Function{
		Entry:        fn.Entry,
		Name:         fn.Name,
		Demangled:    fn.Demangled,
		Module:       fn.Module,
		LibraryIndex: fn.LibraryIndex,
		Type:         funcTypeToWire[fn.Type],
	}

	out.Instructions = make([]Instruction, len(fn.Instructions))
	for i, in := range fn.Instructions {
		wi := Instruction{
			Bytes:       in.Bytes,
			Mnemonic:    in.Mnemonic,
			Flags:       uint8(in.Flags),
			CallTargets: in.CallTargets,
		}
		if i > 0 {
			prev := fn.Instructions[i-1]
			elide := prev.Flags.Has(graph.FlagFlow) &&
				prev.Address+prev.Size() == in.Address &&
				in.Address != fn.Entry
			if !elide {
				addr := in.Address
				wi.Address = &addr
			}
		} else {
			addr := in.Address
			wi.Address = &addr
		}
		if len(in.Operands) > 0 {
			wi.Operands = make([]int, len(in.Operands))
			for j, id := range in.Operands {
				wi.Operands[j] = int(id)
			}
		}
		out.Instructions[i] = wi
	}

	if fn.Flow == nil {
		return out
	}

	blocks := fn.Flow.Blocks()
	indexOf := make(map[graph.BlockID]int, len(blocks))
	for i, bb := range blocks {
		indexOf[bb.Entry] = i
	}

	out.BasicBlocks = make([]BasicBlock, len(blocks))
	for i, bb := range blocks {
		ranges := make([]BlockRange, len(bb.Ranges))
		for j, r := range bb.Ranges {
			wr := BlockRange{Start: r.Start}
			if r.End != r.Start+1 {
				end := r.End
				wr.End = &end
			}
			ranges[j] = wr
		}
		out.BasicBlocks[i] = BasicBlock{Ranges: ranges}
	}

	for _, e := range fn.Flow.Edges() {
		out.Edges = append(out.Edges, Edge{
			Source:     indexOf[e.Source],
			Target:     indexOf[e.Target],
			Type:       edgeTypeToWire[e.Type],
			IsBackEdge: e.IsBackEdge,
		})
	}

	out.EntryBlock = indexOf[fn.Flow.Entry()]

	return out
}
