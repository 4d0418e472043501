package exchange_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmatch/bindiff/exchange"
	"github.com/flowmatch/bindiff/graph"
)

// buildSample constructs a small two-function call graph with an
// arena, string references, a loop, and an address-elided instruction
// stream, exercising every elision rule spec.md §6 describes.
func buildSample(t *testing.T) *graph.CallGraph {
	t.Helper()

	arena := graph.NewArena()
	mPush := arena.InternMnemonic("push")
	arena.InternMnemonic("mov")
	arena.InternMnemonic("call")
	arena.InternMnemonic("ret")
	arena.InternMnemonic("jmp")

	sym := arena.InternExpr(graph.ExprSymbol, 0, 0, 0, "g_errorMessage", 0)
	opStr := arena.NewOperand(sym)

	cg := graph.NewCallGraph()
	cg.SetArena(arena)
	cg.SetLibraries([]graph.Library{{Name: "libc", IsStatic: false}})
	cg.SetModules([]graph.Module{{Name: "main.exe"}})

	callee := &graph.Function{
		Entry: 0x2000,
		Name:  "sub_2000",
		Instructions: []graph.Instruction{
			{Address: 0x2000, Bytes: []byte{0x55}, Mnemonic: mPush, Flags: graph.FlagFlow},
			{Address: 0x2001, Bytes: []byte{0xC3}},
		},
	}
	bbCallee, err := graph.NewBasicBlock(callee, graph.InstrRange{Start: 0, End: 2})
	require.NoError(t, err)
	flowCallee, err := graph.NewFlowGraph(callee, bbCallee.Entry, []*graph.BasicBlock{bbCallee}, nil)
	require.NoError(t, err)
	callee.Flow = flowCallee
	require.NoError(t, cg.AddFunction(callee))

	caller := &graph.Function{
		Entry: 0x1000,
		Name:  "main",
		Instructions: []graph.Instruction{
			{Address: 0x1000, Bytes: []byte{0x55}, Mnemonic: mPush, Flags: graph.FlagFlow},
			// elided: falls through from 0x1000 (FlagFlow, +1 == 0x1001)
			{Address: 0x1001, Bytes: []byte{0x90}, Operands: []graph.OperandID{opStr}, Flags: graph.FlagFlow},
			{Address: 0x1002, Bytes: []byte{0xE8}, CallTargets: []uint64{0x2000}},
			{Address: 0x1003, Bytes: []byte{0xEB}}, // jmp back, no FlagFlow
		},
	}
	bbA, err := graph.NewBasicBlock(caller, graph.InstrRange{Start: 0, End: 3})
	require.NoError(t, err)
	bbB, err := graph.NewBasicBlock(caller, graph.InstrRange{Start: 3, End: 4})
	require.NoError(t, err)
	flowCaller, err := graph.NewFlowGraph(caller, bbA.Entry, []*graph.BasicBlock{bbA, bbB}, []graph.Edge{
		{Source: bbA.Entry, Target: bbB.Entry, Type: graph.EdgeUnconditional},
		{Source: bbB.Entry, Target: bbA.Entry, Type: graph.EdgeUnconditional, IsBackEdge: true},
	})
	require.NoError(t, err)
	caller.Flow = flowCaller
	require.NoError(t, cg.AddFunction(caller))

	require.NoError(t, cg.AddCallEdge(0x1000, 0x2000, 0x1002))

	return cg
}

func TestSaveLoad_RoundTripsFunctionsAndCallEdges(t *testing.T) {
	cg := buildSample(t)
	hdr := exchange.Header{ExecutableID: "deadbeef", OriginalName: "a.out", Architecture: "x86", Timestamp: 1234}

	var buf bytes.Buffer
	require.NoError(t, exchange.Save(&buf, hdr, cg))

	gotHdr, got, err := exchange.Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, hdr, gotHdr)

	assert.Len(t, got.Functions(), 2)
	assert.Len(t, got.CallEdges(), 1)

	main, ok := got.FunctionByAddress(0x1000)
	require.True(t, ok)
	assert.Equal(t, "main", main.Name)
	require.Len(t, main.Instructions, 4)

	// Address-elision round trip: 0x1001 had no explicit address on the
	// wire (it falls through from a FlagFlow instruction) but decodes
	// back to the same address.
	assert.Equal(t, uint64(0x1000), main.Instructions[0].Address)
	assert.Equal(t, uint64(0x1001), main.Instructions[1].Address)
	assert.Equal(t, uint64(0x1002), main.Instructions[2].Address)
	assert.Equal(t, uint64(0x1003), main.Instructions[3].Address)

	require.NotNil(t, main.Flow)
	edges := main.Flow.Edges()
	require.Len(t, edges, 2)
	backCount := 0
	for _, e := range edges {
		if e.IsBackEdge {
			backCount++
		}
	}
	assert.Equal(t, 1, backCount, "the loader-supplied back-edge flag round-trips")

	callee, ok := got.FunctionByAddress(0x2000)
	require.True(t, ok)
	require.NotNil(t, callee.Flow)

	ces := got.CallEdges()
	assert.Equal(t, uint64(0x1000), ces[0].From)
	assert.Equal(t, uint64(0x2000), ces[0].To)
	assert.Equal(t, uint64(0x1002), ces[0].Site)

	require.NotNil(t, got.Arena())
	refs := graph.FunctionStringRefs(got.Arena(), main.Flow)
	assert.Empty(t, refs, "symbol reference wasn't flagged IsReloc, so it is not a string ref")
}

func TestSaveLoad_StringReferenceSurvivesRoundTrip(t *testing.T) {
	// LoadArena accepts an already-decoded expression table directly,
	// which is the only way to construct a relocatable (IsReloc) symbol
	// expression: InternExpr's content-addressing key doesn't include
	// IsReloc, so this builds the table by hand instead.
	arena := graph.LoadArena(
		[]string{"push"},
		[]graph.Expression{{ID: 1, Kind: graph.ExprSymbol, Symbol: "g_errorMessage", IsReloc: true}},
		[]graph.Operand{{Exprs: []graph.ExprID{1}}},
	)

	fn := &graph.Function{
		Entry: 0x3000,
		Name:  "sub_3000",
		Instructions: []graph.Instruction{
			{Address: 0x3000, Bytes: []byte{0x55}, Mnemonic: 0, Operands: []graph.OperandID{0}},
		},
	}
	bb, err := graph.NewBasicBlock(fn, graph.InstrRange{Start: 0, End: 1})
	require.NoError(t, err)
	flow, err := graph.NewFlowGraph(fn, bb.Entry, []*graph.BasicBlock{bb}, nil)
	require.NoError(t, err)
	fn.Flow = flow

	cg := graph.NewCallGraph()
	cg.SetArena(arena)
	require.NoError(t, cg.AddFunction(fn))

	var buf bytes.Buffer
	require.NoError(t, exchange.Save(&buf, exchange.Header{ExecutableID: "x"}, cg))

	_, got, err := exchange.Load(&buf)
	require.NoError(t, err)

	gotFn, ok := got.FunctionByAddress(0x3000)
	require.True(t, ok)
	refs := graph.FunctionStringRefs(got.Arena(), gotFn.Flow)
	assert.Equal(t, []string{"g_errorMessage"}, refs)
}

func TestLoad_RejectsDocumentWithNoFunctions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, exchange.Save(&buf, exchange.Header{}, graph.NewCallGraph()))

	_, _, err := exchange.Load(&buf)
	assert.ErrorIs(t, err, exchange.ErrNoFunctions)
}
