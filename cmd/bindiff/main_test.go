package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmatch/bindiff/exchange"
	"github.com/flowmatch/bindiff/graph"
)

// writeSide saves a tiny single-function call graph (real, non-auto
// name so name_hash can match it) to a temp exchange document and
// returns its path.
func writeSide(t *testing.T, entry uint64) string {
	t.Helper()

	fn := &graph.Function{
		Entry: entry,
		Name:  "ParseConfig",
		Instructions: []graph.Instruction{
			{Address: entry, Bytes: []byte{0x55}},
		},
	}
	bb, err := graph.NewBasicBlock(fn, graph.InstrRange{Start: 0, End: 1})
	require.NoError(t, err)
	flow, err := graph.NewFlowGraph(fn, bb.Entry, []*graph.BasicBlock{bb}, nil)
	require.NoError(t, err)
	fn.Flow = flow

	cg := graph.NewCallGraph()
	require.NoError(t, cg.AddFunction(fn))

	path := filepath.Join(t.TempDir(), "side.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, exchange.Save(f, exchange.Header{ExecutableID: "x"}, cg))

	return path
}

func TestRun_MatchesIdenticalSingleFunctionSides(t *testing.T) {
	primary := writeSide(t, 0x1000)
	secondary := writeSide(t, 0x2000)

	var stdout, stderr bytes.Buffer
	err := run([]string{"-primary", primary, "-secondary", secondary}, &stdout, &stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "matched functions:   1")
	assert.Contains(t, stdout.String(), "0x1000")
	assert.Contains(t, stdout.String(), "0x2000")
}

func TestRun_RequiresBothPaths(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-primary", "only.json"}, &stdout, &stderr)
	assert.Error(t, err)
}

func TestRun_ReportsLoadFailureForMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-primary", "/no/such/file.json", "-secondary", "/no/such/file2.json"}, &stdout, &stderr)
	assert.Error(t, err)
}
