package optimize

import (
	"lll/internal/ir"
	"lll/internal/types"
)

// AggregateSplitting decomposes a struct Alloc whose address is only ever
// narrowed through GetSubPointerStruct (never loaded, stored, or passed
// whole) into one independent Alloc per field, letting alloc-to-phi
// promote each field on its own.
type AggregateSplitting struct{}

func (AggregateSplitting) Name() string { return "aggregate-splitting" }

func (AggregateSplitting) Run(ctx *Context) bool {
	for _, fn := range ctx.Program.Functions {
		for _, b := range fn.Blocks {
			for _, inst := range b.Instructions {
				alloc, ok := inst.(*ir.Alloc)
				if !ok {
					continue
				}
				st, ok := alloc.Inner.(*types.Struct)
				if !ok || !splitPromotable(alloc) {
					continue
				}
				splitAlloc(ctx, b, alloc, st)
				return true
			}
		}
	}
	return false
}

func splitPromotable(alloc *ir.Alloc) bool {
	for _, user := range alloc.Users() {
		g, ok := user.(*ir.GetSubPointerStruct)
		if !ok || g.Target() != ir.Node(alloc) {
			return false
		}
	}
	return true
}

func splitAlloc(ctx *Context, b *ir.BasicBlock, alloc *ir.Alloc, st *types.Struct) {
	fields := make([]*ir.Alloc, len(st.Properties))
	for i, ft := range st.Properties {
		f := ir.NewAlloc(ctx.Program.IDs.Next(), ft, ctx.Program.Interner)
		b.InsertBefore(alloc, f)
		fields[i] = f
	}
	for _, user := range append([]ir.Node{}, alloc.Users()...) {
		gsp := user.(*ir.GetSubPointerStruct)
		ir.ReplaceAllUses(gsp, fields[gsp.Index])
		ir.DeleteInstruction(gsp)
	}
	ir.DeleteInstruction(alloc)
	ctx.Invalidate(b.Fn)
}
