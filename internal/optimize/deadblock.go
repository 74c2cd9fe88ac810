package optimize

import "lll/internal/ir"

// DeadBlockElimination removes every block unreachable from a function's
// entry, first stripping dangling phi sources that referenced them.
type DeadBlockElimination struct{}

func (DeadBlockElimination) Name() string { return "dead-block-elimination" }

func (DeadBlockElimination) Run(ctx *Context) bool {
	changed := false
	for _, fn := range ctx.Program.Functions {
		if fn.Entry == nil {
			continue
		}

		reachable := map[*ir.BasicBlock]bool{}
		var walk func(b *ir.BasicBlock)
		walk = func(b *ir.BasicBlock) {
			if b == nil || reachable[b] {
				return
			}
			reachable[b] = true
			for _, s := range b.Successors() {
				walk(s)
			}
		}
		walk(fn.Entry)

		var dead []*ir.BasicBlock
		for _, b := range fn.Blocks {
			if !reachable[b] {
				dead = append(dead, b)
			}
		}
		if len(dead) == 0 {
			continue
		}
		deadSet := make(map[*ir.BasicBlock]bool, len(dead))
		for _, b := range dead {
			deadSet[b] = true
		}

		for _, b := range fn.Blocks {
			if !reachable[b] {
				continue
			}
			for _, phi := range b.Phis() {
				for _, key := range phi.Keys() {
					if deadSet[key] {
						phi.RemoveSource(key)
					}
				}
			}
		}

		for _, b := range dead {
			ir.DeleteBlock(b)
		}
		ctx.Invalidate(fn)
		changed = true
	}
	return changed
}
