package optimize

import "lll/internal/ir"

// BlockSimplification collapses a Branch whose two arms target the same
// block into a Jump, and splices a block into its sole predecessor when
// that predecessor's only successor is it.
type BlockSimplification struct{}

func (BlockSimplification) Name() string { return "block-simplification" }

func (BlockSimplification) Run(ctx *Context) bool {
	changed := false

	for _, fn := range ctx.Program.Functions {
		for _, b := range fn.Blocks {
			branch, ok := b.Terminator.(*ir.Branch)
			if !ok || branch.TTrue() != branch.TFalse() {
				continue
			}
			target := branch.TTrue()
			b.SetTerminator(ir.NewJump(ctx.Program.IDs.Next(), target))
			ir.DisconnectOperands(branch)
			ctx.Invalidate(fn)
			changed = true
		}
	}

	for _, fn := range ctx.Program.Functions {
		for _, b := range append([]*ir.BasicBlock{}, fn.Blocks...) {
			jump, ok := b.Terminator.(*ir.Jump)
			if !ok {
				continue
			}
			target := jump.Target()
			if target == b || len(target.Predecessors()) != 1 {
				continue
			}

			oldTerm := target.Terminator
			var succs []*ir.BasicBlock
			if oldTerm != nil {
				succs = oldTerm.Targets()
			}

			for _, phi := range target.Phis() {
				if v, ok := phi.Source(b); ok {
					ir.ReplaceAllUses(phi, v)
				}
				ir.DeleteInstruction(phi)
			}

			ir.DisconnectOperands(jump)

			moved := append([]ir.BasicInstruction{}, target.Instructions...)
			target.Instructions = nil
			for _, inst := range moved {
				b.Append(inst)
			}

			b.Terminator = nil
			target.Terminator = nil
			if oldTerm != nil {
				b.SetTerminator(oldTerm)
			}

			for _, s := range succs {
				for _, phi := range s.Phis() {
					if v, ok := phi.Source(target); ok {
						phi.RemoveSource(target)
						phi.AddSource(b, v)
					}
				}
			}

			ir.DeleteBlock(target)
			ctx.Invalidate(fn)
			changed = true
		}
	}

	return changed
}
