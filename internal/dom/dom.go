// Package dom computes dominator trees and dominance frontiers (C6): the
// analysis mem2reg and SCCP consult to find phi placement and join
// points, built once per function per pass invocation since basic blocks
// do not cache this across the many terminator rewrites optimization
// passes perform (see ir.BasicBlock.Predecessors's doc comment).
package dom

import (
	"sort"

	"lll/internal/ir"
)

// Tree is the dominator tree of one function, computed from its Entry
// block. Ties (e.g. which predecessor of a block two equally good
// candidates) are broken using the function's block list order
// (ir.Function.BlockIndex), per spec.md §4.6.
type Tree struct {
	fn    *ir.Function
	rpo   []*ir.BasicBlock
	index map[*ir.BasicBlock]int // position in rpo
	idom  map[*ir.BasicBlock]*ir.BasicBlock
	preds map[*ir.BasicBlock][]*ir.BasicBlock
	frontier map[*ir.BasicBlock][]*ir.BasicBlock
}

// Build computes the dominator tree of fn. fn.Entry must be set and
// reachable from every block that matters (unreachable blocks are simply
// absent from the tree; dead-block elimination is expected to remove
// them).
func Build(fn *ir.Function) *Tree {
	t := &Tree{fn: fn, preds: make(map[*ir.BasicBlock][]*ir.BasicBlock)}
	for _, b := range fn.Blocks {
		t.preds[b] = b.Predecessors()
	}
	t.rpo = reversePostorder(fn.Entry)
	t.index = make(map[*ir.BasicBlock]int, len(t.rpo))
	for i, b := range t.rpo {
		t.index[b] = i
	}
	t.computeIdom()
	return t
}

func reversePostorder(entry *ir.BasicBlock) []*ir.BasicBlock {
	var order []*ir.BasicBlock
	visited := make(map[*ir.BasicBlock]bool)
	var visit func(b *ir.BasicBlock)
	visit = func(b *ir.BasicBlock) {
		if b == nil || visited[b] {
			return
		}
		visited[b] = true
		for _, s := range b.Successors() {
			visit(s)
		}
		order = append(order, b)
	}
	visit(entry)
	// reverse
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

func (t *Tree) computeIdom() {
	if len(t.rpo) == 0 {
		return
	}
	entry := t.rpo[0]
	t.idom = make(map[*ir.BasicBlock]*ir.BasicBlock, len(t.rpo))
	t.idom[entry] = entry

	changed := true
	for changed {
		changed = false
		for _, b := range t.rpo[1:] {
			preds := t.orderedPreds(b)
			var newIdom *ir.BasicBlock
			for _, p := range preds {
				if t.idom[p] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = p
					continue
				}
				newIdom = t.intersect(newIdom, p)
			}
			if newIdom != nil && t.idom[b] != newIdom {
				t.idom[b] = newIdom
				changed = true
			}
		}
	}
	t.idom[entry] = nil // entry has no strict dominator
}

// orderedPreds returns b's predecessors restricted to those reachable
// (present in rpo), sorted by the function's own block order for a
// deterministic tiebreak.
func (t *Tree) orderedPreds(b *ir.BasicBlock) []*ir.BasicBlock {
	all := t.preds[b]
	out := make([]*ir.BasicBlock, 0, len(all))
	for _, p := range all {
		if _, ok := t.index[p]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return t.fn.BlockIndex(out[i]) < t.fn.BlockIndex(out[j]) })
	return out
}

func (t *Tree) intersect(a, b *ir.BasicBlock) *ir.BasicBlock {
	for a != b {
		for t.index[a] > t.index[b] {
			a = t.idom[a]
		}
		for t.index[b] > t.index[a] {
			b = t.idom[b]
		}
	}
	return a
}

// IDom returns b's immediate dominator, or nil for the entry block or an
// unreachable block.
func (t *Tree) IDom(b *ir.BasicBlock) *ir.BasicBlock { return t.idom[b] }

// Dominates reports whether a dominates b (reflexively: a dominates
// itself).
func (t *Tree) Dominates(a, b *ir.BasicBlock) bool {
	if a == b {
		return true
	}
	cur := t.idom[b]
	for cur != nil {
		if cur == a {
			return true
		}
		cur = t.idom[cur]
	}
	return false
}

// Children returns b's immediate children in the dominator tree, ordered
// by the function's block list.
func (t *Tree) Children(b *ir.BasicBlock) []*ir.BasicBlock {
	var out []*ir.BasicBlock
	for _, other := range t.rpo {
		if t.idom[other] == b && other != b {
			out = append(out, other)
		}
	}
	sort.Slice(out, func(i, j int) bool { return t.fn.BlockIndex(out[i]) < t.fn.BlockIndex(out[j]) })
	return out
}

// Frontier returns b's dominance frontier: every block f such that b
// dominates a predecessor of f but does not strictly dominate f itself.
// Computed once and cached across calls on the same Tree.
func (t *Tree) Frontier(b *ir.BasicBlock) []*ir.BasicBlock {
	if t.frontier == nil {
		t.computeFrontiers()
	}
	return t.frontier[b]
}

func (t *Tree) computeFrontiers() {
	t.frontier = make(map[*ir.BasicBlock][]*ir.BasicBlock)
	for _, b := range t.rpo {
		preds := t.orderedPreds(b)
		if len(preds) < 2 {
			continue
		}
		for _, p := range preds {
			runner := p
			for runner != t.idom[b] && runner != nil {
				t.frontier[runner] = appendUnique(t.frontier[runner], b)
				runner = t.idom[runner]
			}
		}
	}
}

func appendUnique(list []*ir.BasicBlock, b *ir.BasicBlock) []*ir.BasicBlock {
	for _, x := range list {
		if x == b {
			return list
		}
	}
	return append(list, b)
}

// ReversePostorder exposes the block order the tree was built from, used
// by SCCP to process blocks in a forward-flow-friendly order.
func (t *Tree) ReversePostorder() []*ir.BasicBlock { return t.rpo }
