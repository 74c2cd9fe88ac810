package optimize

import (
	"lll/internal/dom"
	"lll/internal/ir"
)

// AllocToPhi promotes Alloc slots whose address never escapes (used only
// by Load and Store through that exact pointer) to SSA values, inserting
// Phis at the iterated dominance frontier of their defining stores.
type AllocToPhi struct{}

func (AllocToPhi) Name() string { return "alloc-to-phi" }

func (AllocToPhi) Run(ctx *Context) bool {
	for _, fn := range ctx.Program.Functions {
		if fn.Entry == nil {
			continue
		}
		for _, block := range fn.Blocks {
			for _, inst := range block.Instructions {
				alloc, ok := inst.(*ir.Alloc)
				if !ok || !promotable(alloc) {
					continue
				}
				promote(ctx, fn, alloc)
				return true
			}
		}
	}
	return false
}

// promotable reports whether every use of alloc is a Load or a Store
// through alloc itself (never its address taken and stored elsewhere,
// passed as an argument, or read through a GetSubPointer).
func promotable(alloc *ir.Alloc) bool {
	for _, user := range alloc.Users() {
		switch u := user.(type) {
		case *ir.Load:
			if u.Pointer() != ir.Node(alloc) {
				return false
			}
		case *ir.Store:
			if u.Pointer() != ir.Node(alloc) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func promote(ctx *Context, fn *ir.Function, alloc *ir.Alloc) {
	defBlocks := map[*ir.BasicBlock]bool{}
	for _, user := range alloc.Users() {
		if store, ok := user.(*ir.Store); ok {
			defBlocks[store.Block()] = true
		}
	}

	tree := ctx.DomInfo(fn)
	phiBlocks := map[*ir.BasicBlock]*ir.Phi{}
	worklist := make([]*ir.BasicBlock, 0, len(defBlocks))
	for b := range defBlocks {
		worklist = append(worklist, b)
	}
	for len(worklist) > 0 {
		b := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, f := range tree.Frontier(b) {
			if _, exists := phiBlocks[f]; exists {
				continue
			}
			phi := ir.NewPhi(ctx.Program.IDs.Next(), alloc.Inner)
			f.PrependPhi(phi)
			phiBlocks[f] = phi
			worklist = append(worklist, f)
		}
	}

	undef := ir.NewUndefinedValue(ctx.Program.IDs.Next(), alloc.Inner)
	renameAlloc(fn.Entry, alloc, phiBlocks, ir.Node(undef), tree)

	// renameAlloc's dominator-tree walk never visits blocks unreachable
	// from fn.Entry, so a phi at a join with a structurally-present but
	// dead predecessor is missing that source. block.Predecessors() is
	// unfiltered by reachability, unlike tree.Frontier, so this closes
	// exactly that gap.
	for block, phi := range phiBlocks {
		for _, pred := range block.Predecessors() {
			if _, ok := phi.Source(pred); !ok {
				phi.AddSource(pred, undef)
			}
		}
	}

	ir.DeleteInstruction(alloc)
	ctx.InvalidateAll()
}

// renameAlloc walks the dominator tree from b, threading the value current
// that alloc's contents stand for at this point, rewriting loads, deleting
// stores, and feeding phi sources at successors as it goes.
func renameAlloc(b *ir.BasicBlock, alloc *ir.Alloc, phiBlocks map[*ir.BasicBlock]*ir.Phi, current ir.Node, tree *dom.Tree) {
	if phi, ok := phiBlocks[b]; ok {
		current = ir.Node(phi)
	}

	for _, inst := range append([]ir.BasicInstruction{}, b.Instructions...) {
		switch v := inst.(type) {
		case *ir.Store:
			if v.Pointer() == ir.Node(alloc) {
				current = v.Value()
				ir.DeleteInstruction(v)
			}
		case *ir.Load:
			if v.Pointer() == ir.Node(alloc) {
				ir.ReplaceAllUses(v, current)
				ir.DeleteInstruction(v)
			}
		}
	}

	for _, succ := range b.Successors() {
		if phi, ok := phiBlocks[succ]; ok {
			phi.AddSource(b, current)
		}
	}

	for _, child := range tree.Children(b) {
		renameAlloc(child, alloc, phiBlocks, current, tree)
	}
}
