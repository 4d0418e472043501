package funcmatch

import (
	"hash/fnv"
	"sort"

	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

// minNonTrivialInstructions is the instruction-count floor below which
// a function is considered too small for a byte hash to carry any
// signal (spec.md §4.5.11's "only for non-trivial blocks", applied at
// function granularity).
const minNonTrivialInstructions = 4

// ByteHash keys a function by the order-independent combination of its
// basic blocks' byte hashes, restricted to functions with at least
// minNonTrivialInstructions instructions.
type ByteHash struct{}

func (ByteHash) Name() string { return "byte_hash" }

func (ByteHash) StrictEquivalence() bool { return false }

func (m ByteHash) FindFixedPoints(mc *matchctx.Context, parent *fixedpoint.Function,
	candidatesP, candidatesS []*graph.Function) (bool, error) {
	key := func(side matchctx.Side) func(*graph.Function) (interface{}, bool) {
		return func(fn *graph.Function) (interface{}, bool) {
			if fn.Flow == nil {
				return nil, false
			}
			cache := mc.FlowCache(side, fn.Entry)
			hashes := cache.ByteHashes(fn.Flow)
			if cache.InstructionCount(fn.Flow) < minNonTrivialInstructions {
				return nil, false
			}

			vals := make([]uint64, 0, len(hashes))
			for _, h := range hashes {
				vals = append(vals, h)
			}
			sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })

			h := fnv.New64a()
			for _, v := range vals {
				var buf [8]byte
				for i := range buf {
					buf[i] = byte(v >> (8 * i))
				}
				_, _ = h.Write(buf[:])
			}

			return h.Sum64(), true
		}
	}

	return keyedMatch(mc, m.Name(), candidatesP, candidatesS, key(matchctx.Primary), key(matchctx.Secondary))
}
