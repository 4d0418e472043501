package feature

import (
	"sort"

	"github.com/flowmatch/bindiff/graph"
)

// BlockMnemonics returns bb's instruction mnemonic indices in address
// order, the input to PrimeTable.Product for the basic-block prime
// feature.
func BlockMnemonics(fn *graph.Function, bb *graph.BasicBlock) []int {
	ins := bb.Instructions(fn)
	out := make([]int, len(ins))
	for i, in := range ins {
		out[i] = in.Mnemonic
	}

	return out
}

// firstPrimes lists small primes in ascending order, enough for any
// realistic mnemonic vocabulary. Extend if a target architecture ever
// exceeds this count of distinct mnemonics.
var firstPrimes = []int64{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67, 71,
	73, 79, 83, 89, 97, 101, 103, 107, 109, 113, 127, 131, 137, 139, 149, 151,
	157, 163, 167, 173, 179, 181, 191, 193, 197, 199, 211, 223, 227, 229,
}

// PrimeTable maps an arena mnemonic index to a small prime, assigned by
// descending mnemonic frequency so the most common mnemonic gets the
// smallest prime — the same ordering rule the exchange format uses for
// mnemonic-table indices (spec.md §6), so one frequency count serves
// both.
type PrimeTable struct {
	primeOf map[int]int64
}

// BuildPrimeTable assigns primes to every mnemonic index in counts
// (mnemonic index -> occurrence count across the program).
func BuildPrimeTable(counts map[int]int) *PrimeTable {
	idxs := make([]int, 0, len(counts))
	for idx := range counts {
		idxs = append(idxs, idx)
	}
	sort.Slice(idxs, func(i, j int) bool {
		if counts[idxs[i]] != counts[idxs[j]] {
			return counts[idxs[i]] > counts[idxs[j]]
		}

		return idxs[i] < idxs[j]
	})

	pt := &PrimeTable{primeOf: make(map[int]int64, len(idxs))}
	for rank, idx := range idxs {
		pt.primeOf[idx] = primeAt(rank)
	}

	return pt
}

func primeAt(rank int) int64 {
	if rank < len(firstPrimes) {
		return firstPrimes[rank]
	}
	// Beyond the precomputed table, fall back to the next odd candidate
	// after the table's last prime — exceedingly unlikely to matter for
	// any real mnemonic set, but keeps the table total.
	n := firstPrimes[len(firstPrimes)-1] + int64(rank-len(firstPrimes)+1)*2
	for !isPrime(n) {
		n += 2
	}

	return n
}

func isPrime(n int64) bool {
	if n < 2 {
		return false
	}
	for d := int64(2); d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}

	return true
}

// Prime returns the prime assigned to mnemonic index idx, or 1 if idx
// was never seen (identity element for the product feature).
func (pt *PrimeTable) Prime(idx int) int64 {
	if p, ok := pt.primeOf[idx]; ok {
		return p
	}

	return 1
}

// Product computes the prime-signature product over mnemonics, the
// order-independent identity feature of spec.md §4.2. Overflow is
// accepted silently (the product is compared for equality only between
// runs of the same implementation, where overflow behavior matches).
func (pt *PrimeTable) Product(mnemonics []int) int64 {
	var product int64 = 1
	for _, m := range mnemonics {
		product *= pt.Prime(m)
	}

	return product
}

// EdgePrime computes the basic-block-level "edges prime product"
// feature of spec.md §4.6: prime(source) + prime(target) + 1, keyed by
// the two blocks' own prime-product values rather than their mnemonic
// index.
func EdgePrime(sourceProduct, targetProduct int64) int64 {
	return sourceProduct + targetProduct + 1
}
