package driver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmatch/bindiff/config"
	"github.com/flowmatch/bindiff/driver"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// buildChain builds a function whose flow graph is a linear chain of
// one-instruction blocks at the given addresses, optionally calling
// callees (by entry address) from its first block.
func buildChain(t *testing.T, entry uint64, name string, callees []uint64, addrs ...uint64) *graph.Function {
	t.Helper()
	fn := &graph.Function{Entry: entry, Name: name}
	for i, a := range addrs {
		in := graph.Instruction{Address: a, Bytes: []byte{0x90, byte(i)}, Mnemonic: 1}
		if i == 0 {
			in.CallTargets = callees
		}
		fn.Instructions = append(fn.Instructions, in)
	}

	blocks := make([]*graph.BasicBlock, 0, len(addrs))
	for i, a := range addrs {
		bb, err := graph.NewBasicBlock(fn, graph.InstrRange{Start: i, End: i + 1})
		require.NoError(t, err)
		require.Equal(t, graph.BlockID(a), bb.Entry)
		blocks = append(blocks, bb)
	}

	var edges []graph.Edge
	for i := 0; i < len(addrs)-1; i++ {
		edges = append(edges, graph.Edge{Source: graph.BlockID(addrs[i]), Target: graph.BlockID(addrs[i+1])})
	}

	fg, err := graph.NewFlowGraph(fn, blocks[0].Entry, blocks, edges)
	require.NoError(t, err)
	fn.Flow = fg

	return fn
}

// mirrorCallGraph builds two isomorphic call graphs over fns: the
// secondary side's addresses and call targets are offset by the same
// delta, so every function and call edge has a structurally identical
// counterpart — the "identical binaries, renamed" scenario (spec.md §8
// scenario 1/2).
func mirrorCallGraph(t *testing.T, delta uint64, specs []struct {
	entry   uint64
	name    string
	callees []uint64
	addrs   []uint64
},
) (*graph.CallGraph, *graph.CallGraph) {
	t.Helper()
	primary := graph.NewCallGraph()
	secondary := graph.NewCallGraph()

	for _, s := range specs {
		pf := buildChain(t, s.entry, s.name, s.callees, s.addrs...)
		require.NoError(t, primary.AddFunction(pf))

		shifted := make([]uint64, len(s.addrs))
		for i, a := range s.addrs {
			shifted[i] = a + delta
		}
		shiftedCallees := make([]uint64, len(s.callees))
		for i, c := range s.callees {
			shiftedCallees[i] = c + delta
		}
		sf := buildChain(t, s.entry+delta, s.name+"_renamed", shiftedCallees, shifted...)
		require.NoError(t, secondary.AddFunction(sf))
	}

	for _, s := range specs {
		for _, c := range s.callees {
			require.NoError(t, primary.AddCallEdge(s.entry, c, s.addrs[0]))
			require.NoError(t, secondary.AddCallEdge(s.entry+delta, c+delta, s.addrs[0]+delta))
		}
	}

	return primary, secondary
}

func defaultConfig(t *testing.T) *config.PipelineConfig {
	t.Helper()
	cfg, err := config.New(
		config.WithFunctionSteps(
			"edges_flow_mdindex",
			"callgraph_mdindex",
			"flowgraph_mdindex",
			"name_hash",
			"call_sequence",
			"prime_signature",
			"byte_hash",
			"string_refs",
			"instruction_count",
			"address_sequence",
		),
		config.WithBasicBlockSteps(
			"bb_mdindex",
			"edges_mdindex",
			"bb_prime",
			"bb_byte_hash",
			"call_refs",
			"entry_exit_nodes",
			"bb_instruction_count",
		),
	)
	require.NoError(t, err)

	return cfg
}

func twoFunctionSpecs() []struct {
	entry   uint64
	name    string
	callees []uint64
	addrs   []uint64
} {
	return []struct {
		entry   uint64
		name    string
		callees []uint64
		addrs   []uint64
	}{
		{entry: 0x1000, name: "caller", callees: []uint64{0x2000}, addrs: []uint64{0x1000, 0x1002, 0x1004}},
		{entry: 0x2000, name: "callee", callees: nil, addrs: []uint64{0x2000, 0x2002}},
	}
}

func TestRun_IdenticalStructureEverythingMatches(t *testing.T) {
	primary, secondary := mirrorCallGraph(t, 0x10000, twoFunctionSpecs())
	mc := matchctx.New(primary, secondary)
	cfg := defaultConfig(t)

	res, err := driver.NewDefault(primary, secondary).Run(context.Background(), mc, cfg)
	require.NoError(t, err)
	require.False(t, res.Cancelled)

	require.Len(t, res.FixedPoints, 2)
	for _, fp := range res.FixedPoints {
		assert.Equal(t, fp.PrimaryAddr+0x10000, fp.SecondaryAddr)
	}

	caller, ok := mc.Store.ByPrimary(0x1000)
	require.True(t, ok)
	assert.Len(t, caller.BasicBlocks, 3, "every block of the caller should have a basic-block fixed point")

	_, ok = mc.Store.ByPrimary(0x2000)
	assert.True(t, ok)
}

// TestRun_CallSequencePropagatesStructurallyAmbiguousCallees builds a
// caller that calls two callees with identical internal shape (same
// auto-generated name convention, same instruction count, same byte
// pattern), so no structural function-level step can tell them apart —
// only call-sequence propagation from the already-matched caller, which
// pairs call sites positionally, can resolve them (spec.md §4.7's "call
// sequence" propagation paragraph).
func TestRun_CallSequencePropagatesStructurallyAmbiguousCallees(t *testing.T) {
	delta := uint64(0x10000)
	primary := graph.NewCallGraph()
	secondary := graph.NewCallGraph()

	callerAddrs := []uint64{0x1000, 0x1002, 0x1004, 0x1006}
	callees := []uint64{0x2000, 0x3000}

	pCaller := buildChain(t, 0x1000, "caller", callees, callerAddrs...)
	require.NoError(t, primary.AddFunction(pCaller))
	sCaller := buildChain(t, 0x1000+delta, "caller_renamed", offset(callees, delta), offset(callerAddrs, delta)...)
	require.NoError(t, secondary.AddFunction(sCaller))

	for _, c := range callees {
		pCallee := buildChain(t, c, "sub_"+hex(c), nil, c, c+2)
		require.NoError(t, primary.AddFunction(pCallee))
		sCallee := buildChain(t, c+delta, "sub_"+hex(c+delta), nil, c+delta, c+2+delta)
		require.NoError(t, secondary.AddFunction(sCallee))
	}

	for i, c := range callees {
		site := callerAddrs[0] + uint64(i)
		require.NoError(t, primary.AddCallEdge(0x1000, c, site))
		require.NoError(t, secondary.AddCallEdge(0x1000+delta, c+delta, site+delta))
	}

	mc := matchctx.New(primary, secondary)
	cfg := defaultConfig(t)

	res, err := driver.NewDefault(primary, secondary).Run(context.Background(), mc, cfg)
	require.NoError(t, err)
	require.Len(t, res.FixedPoints, 3)

	for _, c := range callees {
		fp, ok := mc.Store.ByPrimary(c)
		require.True(t, ok, "callee at %#x should be matched", c)
		assert.Equal(t, c+delta, fp.SecondaryAddr)
		assert.Equal(t, "function_call_reference_match", fp.StepName,
			"structurally identical callees can only be resolved by call-sequence propagation")
	}
}

func hex(v uint64) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	var buf []byte
	for v > 0 {
		buf = append([]byte{digits[v%16]}, buf...)
		v /= 16
	}

	return string(buf)
}

func TestRun_Idempotent(t *testing.T) {
	primary, secondary := mirrorCallGraph(t, 0x10000, twoFunctionSpecs())
	cfg := defaultConfig(t)

	mc1 := matchctx.New(primary, secondary)
	res1, err := driver.NewDefault(primary, secondary).Run(context.Background(), mc1, cfg)
	require.NoError(t, err)

	mc2 := matchctx.New(primary, secondary)
	res2, err := driver.NewDefault(primary, secondary).Run(context.Background(), mc2, cfg)
	require.NoError(t, err)

	require.Len(t, res2.FixedPoints, len(res1.FixedPoints))
	for i := range res1.FixedPoints {
		assert.Equal(t, res1.FixedPoints[i].PrimaryAddr, res2.FixedPoints[i].PrimaryAddr)
		assert.Equal(t, res1.FixedPoints[i].SecondaryAddr, res2.FixedPoints[i].SecondaryAddr)
		assert.InDelta(t, res1.FixedPoints[i].Confidence, res2.FixedPoints[i].Confidence, 1e-9)
	}
}

func TestRun_EmptyPipelineIsConfigError(t *testing.T) {
	primary := graph.NewCallGraph()
	secondary := graph.NewCallGraph()
	mc := matchctx.New(primary, secondary)

	_, err := driver.NewDefault(primary, secondary).Run(context.Background(), mc, &config.PipelineConfig{})
	require.Error(t, err)
	assert.ErrorIs(t, err, driver.ErrConfig)
}

func TestRun_UnmatchedPrimaryOnlyFunctionStaysUnmatched(t *testing.T) {
	primary := graph.NewCallGraph()
	secondary := graph.NewCallGraph()

	onlyPrimary := buildChain(t, 0x3000, "only_primary", nil, 0x3000, 0x3002)
	require.NoError(t, primary.AddFunction(onlyPrimary))

	specs := twoFunctionSpecs()
	for _, s := range specs {
		pf := buildChain(t, s.entry, s.name, s.callees, s.addrs...)
		require.NoError(t, primary.AddFunction(pf))
		sf := buildChain(t, s.entry+0x10000, s.name+"_renamed", offset(s.callees, 0x10000), offset(s.addrs, 0x10000)...)
		require.NoError(t, secondary.AddFunction(sf))
	}
	for _, s := range specs {
		for _, c := range s.callees {
			require.NoError(t, primary.AddCallEdge(s.entry, c, s.addrs[0]))
			require.NoError(t, secondary.AddCallEdge(s.entry+0x10000, c+0x10000, s.addrs[0]+0x10000))
		}
	}

	mc := matchctx.New(primary, secondary)
	cfg := defaultConfig(t)

	res, err := driver.NewDefault(primary, secondary).Run(context.Background(), mc, cfg)
	require.NoError(t, err)
	require.Len(t, res.FixedPoints, 2, "only_primary has no counterpart and must not spuriously match")

	_, ok := mc.Store.ByPrimary(0x3000)
	assert.False(t, ok)
}

func TestRun_RespectsCancellation(t *testing.T) {
	primary, secondary := mirrorCallGraph(t, 0x10000, twoFunctionSpecs())
	cancel := make(chan struct{})
	close(cancel)
	mc := matchctx.New(primary, secondary, matchctx.WithCancel(cancel))
	cfg := defaultConfig(t)

	res, err := driver.NewDefault(primary, secondary).Run(context.Background(), mc, cfg)
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Empty(t, res.FixedPoints)
}

func offset(addrs []uint64, delta uint64) []uint64 {
	out := make([]uint64, len(addrs))
	for i, a := range addrs {
		out[i] = a + delta
	}

	return out
}
