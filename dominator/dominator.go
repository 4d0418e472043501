package dominator

import (
	"fmt"
	"sort"

	"github.com/flowmatch/bindiff/graph"
)

// Tree is an immutable dominator tree rooted at a flow graph's entry
// block. Blocks unreachable from the entry are simply absent from the
// tree; Dominates and IDom report them as undominated rather than
// erroring, since an unreachable block can still appear as the source
// of a dangling edge upstream of construction.
type Tree struct {
	entry    graph.BlockID
	idomOf   map[graph.BlockID]graph.BlockID
	children map[graph.BlockID][]graph.BlockID
}

// Build computes the dominator tree of fg rooted at fg.Entry() via the
// Lengauer-Tarjan algorithm: a reverse-preorder pass computes
// semidominators using a path-compressing forest (eval/link), then a
// single forward pass corrects semidominator approximations into true
// immediate dominators.
func Build(fg *graph.FlowGraph) (*Tree, error) {
	blocks := fg.Blocks()
	if len(blocks) == 0 {
		return nil, graph.ErrNoEntryBlock
	}

	succ := make(map[graph.BlockID][]graph.BlockID, len(blocks))
	pred := make(map[graph.BlockID][]graph.BlockID, len(blocks))
	for _, bb := range blocks {
		succ[bb.Entry] = fg.Successors(bb.Entry)
	}
	for _, e := range fg.Edges() {
		pred[e.Target] = append(pred[e.Target], e.Source)
	}

	// Preorder DFS numbering from the entry block, iterative to avoid
	// recursion depth tied to function size. dfnum/vertex/parent are
	// 1-indexed; index 0 doubles as the "unvisited"/"none" sentinel.
	dfnum := make(map[graph.BlockID]int, len(blocks))
	vertex := make([]graph.BlockID, 1, len(blocks)+1)
	parent := make([]int, 1, len(blocks)+1)

	type frame struct {
		id   graph.BlockID
		next int
	}

	dfnum[fg.Entry()] = 1
	vertex = append(vertex, fg.Entry())
	parent = append(parent, 0)
	stack := []frame{{id: fg.Entry()}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		children := succ[top.id]
		descended := false
		for top.next < len(children) {
			w := children[top.next]
			top.next++
			if _, seen := dfnum[w]; !seen {
				dfnum[w] = len(vertex)
				vertex = append(vertex, w)
				parent = append(parent, dfnum[top.id])
				stack = append(stack, frame{id: w})
				descended = true

				break
			}
		}
		if !descended && top.next >= len(children) {
			stack = stack[:len(stack)-1]
		}
	}

	size := len(vertex)
	semi := make([]int, size)
	ancestor := make([]int, size)
	label := make([]int, size)
	idomIdx := make([]int, size)
	bucket := make([][]int, size)
	for i := 1; i < size; i++ {
		semi[i] = i
		label[i] = i
	}

	var compress func(v int)
	compress = func(v int) {
		if ancestor[ancestor[v]] != 0 {
			compress(ancestor[v])
			if semi[label[ancestor[v]]] < semi[label[v]] {
				label[v] = label[ancestor[v]]
			}
			ancestor[v] = ancestor[ancestor[v]]
		}
	}
	eval := func(v int) int {
		if ancestor[v] == 0 {
			return v
		}
		compress(v)

		return label[v]
	}
	link := func(v, w int) { ancestor[w] = v }

	for i := size - 1; i >= 2; i-- {
		w := i
		for _, p := range pred[vertex[w]] {
			pn, ok := dfnum[p]
			if !ok {
				continue // predecessor unreachable from entry
			}
			if u := eval(pn); semi[u] < semi[w] {
				semi[w] = semi[u]
			}
		}
		bucket[semi[w]] = append(bucket[semi[w]], w)
		link(parent[w], w)
		for _, v := range bucket[parent[w]] {
			if u := eval(v); semi[u] < semi[v] {
				idomIdx[v] = u
			} else {
				idomIdx[v] = parent[w]
			}
		}
		bucket[parent[w]] = nil
	}
	for i := 2; i < size; i++ {
		if idomIdx[i] != semi[i] {
			idomIdx[i] = idomIdx[idomIdx[i]]
		}
	}
	idomIdx[1] = 1 // the entry dominates itself

	t := &Tree{
		entry:    fg.Entry(),
		idomOf:   make(map[graph.BlockID]graph.BlockID, size-1),
		children: make(map[graph.BlockID][]graph.BlockID, size-1),
	}
	for i := 1; i < size; i++ {
		id := vertex[i]
		idomID := vertex[idomIdx[i]]
		t.idomOf[id] = idomID
		if id != t.entry {
			t.children[idomID] = append(t.children[idomID], id)
		}
	}
	for k := range t.children {
		ch := t.children[k]
		sort.Slice(ch, func(i, j int) bool { return ch[i] < ch[j] })
	}

	return t, nil
}

// Dominates reports whether a dominates b; a == b counts as dominating.
// Unreachable blocks dominate nothing and are dominated by nothing.
func (t *Tree) Dominates(a, b graph.BlockID) bool {
	if _, ok := t.idomOf[a]; !ok {
		return false
	}

	for cur := b; ; {
		if _, ok := t.idomOf[cur]; !ok {
			return false
		}
		if cur == a {
			return true
		}
		if cur == t.entry {
			return false
		}
		cur = t.idomOf[cur]
	}
}

// IDom returns id's immediate dominator and true, or the zero value and
// false if id is unreachable from the entry. The entry block is its own
// immediate dominator.
func (t *Tree) IDom(id graph.BlockID) (graph.BlockID, bool) {
	v, ok := t.idomOf[id]

	return v, ok
}

// Children returns id's immediate children in the dominator tree,
// sorted ascending.
func (t *Tree) Children(id graph.BlockID) []graph.BlockID {
	return t.children[id]
}

// BackEdges returns fg's back-edge set: every self-edge plus every edge
// (u,v) such that v dominates u, sorted by (source, target, type).
// Edges touching a block unreachable from the entry are never
// classified as back-edges.
func BackEdges(fg *graph.FlowGraph) ([]graph.Edge, error) {
	tree, err := Build(fg)
	if err != nil {
		return nil, fmt.Errorf("dominator: BackEdges: %w", err)
	}

	var out []graph.Edge
	for _, e := range fg.Edges() {
		if e.Source == e.Target || tree.Dominates(e.Target, e.Source) {
			e.IsBackEdge = true
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })

	return out, nil
}
